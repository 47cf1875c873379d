package repositories

import (
	"time"

	"github.com/oyna-edu/gameplay-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type GameTaskFilters struct {
	Status    *models.GameTaskStatus `json:"status"`
	OwnerID   *string                `json:"owner_id"`
	Query     *string                `json:"query"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
	SortBy    string                 `json:"sort_by"`    // "created_at", "title"
	SortOrder string                 `json:"sort_order"` // "asc", "desc"
}

type SessionFilters struct {
	Status     *models.SessionStatus `json:"status"`
	GameTaskID *uint                 `json:"game_task_id"`
	CreatedBy  *string               `json:"created_by"`
	DateFrom   *time.Time            `json:"date_from"`
	DateTo     *time.Time            `json:"date_to"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`
	SortBy     string                `json:"sort_by"`
	SortOrder  string                `json:"sort_order"`
}

// ===== SHARED RESULT STRUCTS =====

// LeaderboardEntry is one row of the session standings. Ordering is score
// desc, correct count desc, then earliest finisher wins ties.
type LeaderboardEntry struct {
	Rank          int        `json:"rank"`
	ParticipantID uint       `json:"participant_id"`
	Nickname      string     `json:"nickname"`
	Score         int        `json:"score"`
	CorrectCount  int        `json:"correct_count"`
	IsFinished    bool       `json:"is_finished"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
}

// SessionStats summarizes a finished or running session for teachers
type SessionStats struct {
	ParticipantCount int     `json:"participant_count"`
	FinishedCount    int     `json:"finished_count"`
	AverageScore     float64 `json:"average_score"`
	QuestionCount    int     `json:"question_count"`
}
