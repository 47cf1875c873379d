package models

import (
	"time"

	"gorm.io/datatypes"
)

// Participant is one player inside one session. The Token is the sole
// credential for gameplay calls; no account is involved.
type Participant struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	SessionID uint   `json:"session_id" gorm:"not null;index;uniqueIndex:idx_session_nickname"`
	Nickname  string `json:"nickname" gorm:"not null;size:64;uniqueIndex:idx_session_nickname"`
	Token     string `json:"-" gorm:"uniqueIndex;not null;size:36"`

	Score        int `json:"score" gorm:"not null;default:0"`
	CorrectCount int `json:"correct_count" gorm:"not null;default:0"`

	// In-flight pointer: which question was last served and when, the basis
	// for time-spent on the next submission.
	CurrentQuestionID *uint      `json:"current_question_id"`
	CurrentStartedAt  *time.Time `json:"current_started_at"`

	IsFinished bool       `json:"is_finished" gorm:"not null;default:false"`
	StartedAt  time.Time  `json:"started_at" gorm:"autoCreateTime"`
	FinishedAt *time.Time `json:"finished_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Session *GameTaskSession `json:"session,omitempty" gorm:"foreignKey:SessionID"`
}

// QuestionAttempt records the outcome of one participant on one question.
// The composite unique index is the concurrency backstop: duplicate
// submissions lose the insert race and the caller re-renders state instead of
// double counting.
type QuestionAttempt struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	ParticipantID uint `json:"participant_id" gorm:"not null;index;uniqueIndex:idx_participant_question"`
	QuestionID    uint `json:"question_id" gorm:"not null;index;uniqueIndex:idx_participant_question"`

	// Answered is false for timeouts and empty submissions; IsCorrect stays
	// nil in that case so reviews can distinguish "wrong" from "skipped".
	Answered  bool  `json:"answered" gorm:"not null;default:false"`
	IsCorrect *bool `json:"is_correct"`

	ScoreDelta int `json:"score_delta" gorm:"not null;default:0"`

	// TimeSpent is the grading-time measurement in seconds.
	TimeSpent float64 `json:"time_spent" gorm:"not null;default:0"`

	// Payload holds format-specific submission details as JSONB.
	Payload datatypes.JSON `json:"payload" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`

	Participant *Participant `json:"participant,omitempty" gorm:"foreignKey:ParticipantID"`
	Question    *Question    `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

// TestAnswer is one selected option on a test-format attempt.
type TestAnswer struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	AttemptID uint `json:"attempt_id" gorm:"not null;index;uniqueIndex:idx_attempt_option"`
	OptionID  uint `json:"option_id" gorm:"not null;uniqueIndex:idx_attempt_option"`

	Attempt *QuestionAttempt `json:"attempt,omitempty" gorm:"foreignKey:AttemptID"`
	Option  *Option          `json:"option,omitempty" gorm:"foreignKey:OptionID"`
}

func (Participant) TableName() string {
	return "participants"
}

func (QuestionAttempt) TableName() string {
	return "question_attempts"
}

func (TestAnswer) TableName() string {
	return "test_answers"
}
