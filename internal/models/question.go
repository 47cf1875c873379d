package models

import (
	"time"
)

// FormatCode selects the grading handler for a question.
type FormatCode string

const (
	// FormatTest is the single/multiple-choice format. Other formats
	// (matching, ordering) register their own handlers without touching the
	// gameplay controller.
	FormatTest FormatCode = "test"
)

// VariantCode refines grading within a format.
type VariantCode string

const (
	VariantSingle   VariantCode = "single"
	VariantMultiple VariantCode = "multiple"
)

type DifficultyLevel string

const (
	LevelEasy   DifficultyLevel = "easy"
	LevelMedium DifficultyLevel = "medium"
	LevelHard   DifficultyLevel = "hard"
)

type Question struct {
	ID      uint            `json:"id" gorm:"primaryKey"`
	Body    string          `json:"body" gorm:"type:text;not null"`
	Format  FormatCode      `json:"format" gorm:"not null;default:test;size:64;index"`
	Variant VariantCode     `json:"variant" gorm:"default:single;size:64"`
	Level   DifficultyLevel `json:"level" gorm:"default:easy;size:16"`

	// TimeLimit is the per-question allowance in seconds; 0 means the
	// question is untimed for scoring purposes.
	TimeLimit int `json:"time_limit" gorm:"default:0"`

	CreatedBy string    `json:"created_by" gorm:"index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Options []Option `json:"options" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Answer     string `json:"answer" gorm:"type:text;not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`
}

func (Question) TableName() string {
	return "questions"
}

func (Option) TableName() string {
	return "options"
}

// CorrectOptionIDs returns the ids of the options flagged correct.
func (q *Question) CorrectOptionIDs() []uint {
	var ids []uint
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// OptionIDSet returns the set of option ids belonging to the question, used
// to discard forged or stale submissions.
func (q *Question) OptionIDSet() map[uint]bool {
	set := make(map[uint]bool, len(q.Options))
	for _, opt := range q.Options {
		set[opt.ID] = true
	}
	return set
}
