package services

import (
	"context"

	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
	"github.com/oyna-edu/gameplay-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateSessionRequest = validator.SessionCreateRequest
type JoinSessionRequest = validator.JoinSessionRequest
type SubmitAnswerRequest = validator.SubmitAnswerRequest
type SessionListRequest = validator.SessionListRequest
type GameTaskListRequest = validator.GameTaskListRequest

type SessionResponse struct {
	*models.GameTaskSession
	ParticipantCount int64 `json:"participant_count"`
	QuestionCount    int64 `json:"question_count"`
	RemainingSeconds int   `json:"remaining_seconds"`
	CanStart         bool  `json:"can_start"`
	CanFinish        bool  `json:"can_finish"`
	CanDelete        bool  `json:"can_delete"`
}

type SessionListResponse struct {
	Sessions []*SessionResponse `json:"sessions"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Size     int                `json:"size"`
}

type GameTaskResponse struct {
	*models.GameTask
	QuestionCount int64 `json:"question_count"`
	IsOwner       bool  `json:"is_owner"`
}

type GameTaskListResponse struct {
	GameTasks []*GameTaskResponse `json:"game_tasks"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Size      int                 `json:"size"`
}

// JoinResponse hands the participant their play token. The token is the only
// credential for all gameplay calls.
type JoinResponse struct {
	Token         string `json:"token"`
	Nickname      string `json:"nickname"`
	SessionID     uint   `json:"session_id"`
	QuestionCount int    `json:"question_count"`
}

// Play phases as seen by the participant
const (
	PhaseLobby    = "lobby"
	PhaseQuestion = "question"
	PhaseFinished = "finished"
)

// PlayStateResponse is the single source of truth for what the participant
// screen shows. Question is populated only in the question phase.
type PlayStateResponse struct {
	Phase            string                 `json:"phase"`
	SessionStatus    models.SessionStatus   `json:"session_status"`
	Nickname         string                 `json:"nickname"`
	Score            int                    `json:"score"`
	CorrectCount     int                    `json:"correct_count"`
	Cursor           int                    `json:"cursor"`
	QuestionCount    int                    `json:"question_count"`
	RemainingSeconds int                    `json:"remaining_seconds"`
	Question         map[string]interface{} `json:"question,omitempty"`
}

// SubmitAnswerResponse reports the graded outcome plus the follow-up state.
// When Accepted is false the submission was stale or duplicated and nothing
// was recorded; State still tells the client what to render next.
type SubmitAnswerResponse struct {
	Accepted   bool               `json:"accepted"`
	Answered   bool               `json:"answered"`
	IsCorrect  *bool              `json:"is_correct"`
	ScoreDelta int                `json:"score_delta"`
	Score      int                `json:"score"`
	State      *PlayStateResponse `json:"state"`
}

type ResultResponse struct {
	Nickname      string                   `json:"nickname"`
	Score         int                      `json:"score"`
	CorrectCount  int                      `json:"correct_count"`
	QuestionCount int                      `json:"question_count"`
	Rank          int                      `json:"rank"`
	Review        []map[string]interface{} `json:"review"`
}

// LeaderboardResponse is the teacher dashboard view: the ranked entries plus
// the aggregates shown above them. AverageScore is 0 with no participants.
type LeaderboardResponse struct {
	SessionID        uint                             `json:"session_id"`
	Status           models.SessionStatus             `json:"status"`
	ParticipantCount int                              `json:"participant_count"`
	FinishedCount    int                              `json:"finished_count"`
	AverageScore     float64                          `json:"average_score"`
	Entries          []*repositories.LeaderboardEntry `json:"entries"`
}

// ===== SERVICE INTERFACES =====

// SessionService manages the teacher-facing session lifecycle
type SessionService interface {
	Create(ctx context.Context, req *CreateSessionRequest, creatorID string) (*SessionResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*SessionResponse, error)
	List(ctx context.Context, req *SessionListRequest, userID string) (*SessionListResponse, error)

	// Lifecycle transitions; both are idempotent when repeated
	Start(ctx context.Context, id uint, userID string) (*SessionResponse, error)
	Finish(ctx context.Context, id uint, userID string) (*SessionResponse, error)

	Delete(ctx context.Context, id uint, userID string) error
}

// GameplayService drives the participant flow, keyed by play token
type GameplayService interface {
	Join(ctx context.Context, req *JoinSessionRequest) (*JoinResponse, error)
	CurrentState(ctx context.Context, token string) (*PlayStateResponse, error)
	SubmitAnswer(ctx context.Context, token string, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error)
	FinishEarly(ctx context.Context, token string) (*PlayStateResponse, error)
	Result(ctx context.Context, token string) (*ResultResponse, error)
}

// LeaderboardService serves the live standings
type LeaderboardService interface {
	Get(ctx context.Context, sessionID uint, userID string) (*LeaderboardResponse, error)
}

// GameTaskService provides read access to quiz definitions
type GameTaskService interface {
	GetByID(ctx context.Context, id uint, userID string) (*GameTaskResponse, error)
	List(ctx context.Context, req *GameTaskListRequest, userID string) (*GameTaskListResponse, error)
}

// ExportService produces downloadable result files
type ExportService interface {
	// ExportSessionResults renders the session standings as an xlsx
	// workbook and returns the bytes with a suggested filename.
	ExportSessionResults(ctx context.Context, sessionID uint, userID string) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Session() SessionService
	Gameplay() GameplayService
	Leaderboard() LeaderboardService
	GameTask() GameTaskService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
