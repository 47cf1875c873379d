package validator

import (
	"github.com/oyna-edu/gameplay-service/internal/models"
)

// SessionCreateRequest represents the request structure for creating a live session
type SessionCreateRequest struct {
	GameTaskID uint                `json:"game_task_id" validate:"required"`
	PlayMode   models.PlayMode     `json:"play_mode" validate:"required,oneof=speed classic"`
	Limit      models.SessionLimit `json:"limit" validate:"required,oneof=limited limitless"`

	// Duration is required only for limited sessions, enforced as a
	// business rule.
	Duration int `json:"duration" validate:"omitempty,session_duration"`
}

// JoinSessionRequest represents a student entering a session by pin
type JoinSessionRequest struct {
	PinCode  string `json:"pin_code" validate:"required,pin_code"`
	Nickname string `json:"nickname" validate:"required,nickname"`
}

// SubmitAnswerRequest represents one answer submission during play.
// QuestionID pins the submission to the question the client was showing;
// stale submissions are rejected against the server-side cursor. Timeout
// marks a client-side timer expiry, recorded as an unanswered attempt.
type SubmitAnswerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	OptionIDs  []uint `json:"option_ids" validate:"omitempty,max=16"`
	Timeout    bool   `json:"timeout"`
}

// SessionListRequest filters the teacher's session list
type SessionListRequest struct {
	Status     *models.SessionStatus `form:"status" validate:"omitempty,oneof=pending active finished"`
	GameTaskID *uint                 `form:"game_task_id"`
	Limit      int                   `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset     int                   `form:"offset" validate:"omitempty,min=0"`
	SortBy     string                `form:"sort_by" validate:"omitempty,oneof=created_at updated_at started_at id status"`
	SortOrder  string                `form:"sort_order" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// GameTaskListRequest filters the teacher's game task list
type GameTaskListRequest struct {
	Status    *models.GameTaskStatus `form:"status" validate:"omitempty,oneof=draft published archived"`
	Query     *string                `form:"query" validate:"omitempty,max=200"`
	Limit     int                    `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset    int                    `form:"offset" validate:"omitempty,min=0"`
	SortBy    string                 `form:"sort_by" validate:"omitempty,oneof=created_at updated_at title id status"`
	SortOrder string                 `form:"sort_order" validate:"omitempty,oneof=asc desc ASC DESC"`
}
