package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/events"
	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
	"github.com/oyna-edu/gameplay-service/internal/validator"
)

const (
	// maxPendingSessions caps unstarted sessions per game task so abandoned
	// lobbies cannot pile up.
	maxPendingSessions = 5

	// pinAttempts bounds the retry loop for unique pin generation
	pinAttempts = 10
)

type sessionService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewSessionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, eventPublisher events.EventPublisher) SessionService {
	return &sessionService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		eventPublisher: eventPublisher,
	}
}

// ===== CORE OPERATIONS =====

func (s *sessionService) Create(ctx context.Context, req *CreateSessionRequest, creatorID string) (*SessionResponse, error) {
	s.logger.Info("Creating session",
		"game_task_id", req.GameTaskID,
		"creator_id", creatorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	task, err := s.repo.GameTask().GetByID(ctx, s.db, req.GameTaskID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrGameTaskNotFound
		}
		return nil, fmt.Errorf("failed to get game task: %w", err)
	}

	if err := s.checkTaskAccess(ctx, task, creatorID, "create_session"); err != nil {
		return nil, err
	}

	if task.Status != models.GameTaskPublished {
		return nil, ErrGameTaskNotPublished
	}

	questionCount, err := s.repo.GameTask().QuestionCount(ctx, s.db, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	if questionCount == 0 {
		return nil, ErrGameTaskHasNoQuestions
	}

	// A limited session without an explicit allowance gets the sum of the
	// per-question time limits.
	if req.Limit == models.SessionLimited && req.Duration == 0 {
		total, err := s.taskDurationSeconds(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		req.Duration = total
	}

	if errs := s.validator.GetBusinessValidator().ValidateSessionCreate(req); len(errs) > 0 {
		return nil, errs
	}

	var session *models.GameTaskSession
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		pendingCount, err := txRepo.Session().CountByTaskAndStatus(ctx, nil, task.ID, models.SessionPending)
		if err != nil {
			return fmt.Errorf("failed to count pending sessions: %w", err)
		}
		if pendingCount >= maxPendingSessions {
			return ErrPendingSessionLimit
		}

		pin, err := s.generateUniquePin(ctx, txRepo)
		if err != nil {
			return err
		}

		session = &models.GameTaskSession{
			GameTaskID: task.ID,
			Status:     models.SessionPending,
			PlayMode:   req.PlayMode,
			Limit:      req.Limit,
			Duration:   req.Duration,
			PinCode:    pin,
			CreatedBy:  creatorID,
		}

		return txRepo.Session().Create(ctx, nil, session)
	})
	if err != nil {
		return nil, err
	}

	s.publishSessionEvent(ctx, events.SessionCreated, session)

	s.logger.Info("Session created",
		"session_id", session.ID,
		"pin_code", session.PinCode,
		"game_task_id", task.ID)

	return s.toSessionResponse(ctx, session, creatorID)
}

func (s *sessionService) GetByID(ctx context.Context, id uint, userID string) (*SessionResponse, error) {
	session, err := s.getSessionChecked(ctx, id, userID, "read")
	if err != nil {
		return nil, err
	}

	session, err = s.autoFinishIfExpired(ctx, session)
	if err != nil {
		return nil, err
	}

	return s.toSessionResponse(ctx, session, userID)
}

func (s *sessionService) List(ctx context.Context, req *SessionListRequest, userID string) (*SessionListResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.GameTaskID != nil {
		if err := s.checkTaskListAccess(ctx, *req.GameTaskID, userID); err != nil {
			return nil, err
		}
	}

	filters := repositories.SessionFilters{
		Status:     req.Status,
		GameTaskID: req.GameTaskID,
		CreatedBy:  &userID,
		Limit:      req.Limit,
		Offset:     req.Offset,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}
	if filters.Limit <= 0 {
		filters.Limit = 20
	}

	sessions, total, err := s.repo.Session().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	responses := make([]*SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		response, err := s.toSessionResponse(ctx, session, userID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}

	return &SessionListResponse{
		Sessions: responses,
		Total:    total,
		Page:     filters.Offset/filters.Limit + 1,
		Size:     filters.Limit,
	}, nil
}

// Start flips a pending session to active. Repeating the call on an active
// session is a no-op.
func (s *sessionService) Start(ctx context.Context, id uint, userID string) (*SessionResponse, error) {
	session, err := s.getSessionChecked(ctx, id, userID, "start")
	if err != nil {
		return nil, err
	}

	if session.Status == models.SessionActive {
		return s.toSessionResponse(ctx, session, userID)
	}
	if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(session.Status, models.SessionActive); len(errs) > 0 {
		return nil, ErrSessionAlreadyFinished
	}

	now := time.Now()
	session.Status = models.SessionActive
	session.StartedAt = &now

	if err := s.repo.Session().Update(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	s.publishSessionEvent(ctx, events.SessionStarted, session)

	s.logger.Info("Session started", "session_id", session.ID)

	return s.toSessionResponse(ctx, session, userID)
}

// Finish closes a session from any earlier state. Repeating the call on a
// finished session is a no-op.
func (s *sessionService) Finish(ctx context.Context, id uint, userID string) (*SessionResponse, error) {
	session, err := s.getSessionChecked(ctx, id, userID, "finish")
	if err != nil {
		return nil, err
	}

	if session.Status == models.SessionFinished {
		return s.toSessionResponse(ctx, session, userID)
	}
	if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(session.Status, models.SessionFinished); len(errs) > 0 {
		return nil, ErrSessionAlreadyFinished
	}

	if err := s.finishSession(ctx, session); err != nil {
		return nil, err
	}

	return s.toSessionResponse(ctx, session, userID)
}

func (s *sessionService) Delete(ctx context.Context, id uint, userID string) error {
	session, err := s.getSessionChecked(ctx, id, userID, "delete")
	if err != nil {
		return err
	}

	participantCount, err := s.repo.Participant().CountBySession(ctx, s.db, session.ID)
	if err != nil {
		return fmt.Errorf("failed to count participants: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateDeletePermission(session.Status, participantCount); len(errs) > 0 {
		return errs
	}

	if err := s.repo.Session().Delete(ctx, nil, session.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.publishSessionEvent(ctx, events.SessionDeleted, session)

	s.logger.Info("Session deleted", "session_id", session.ID)

	return nil
}

// ===== HELPERS =====

func (s *sessionService) getSessionChecked(ctx context.Context, id uint, userID, action string) (*models.GameTaskSession, error) {
	session, err := s.repo.Session().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.CreatedBy != userID {
		isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
		if err != nil || !isAdmin {
			return nil, NewPermissionError(userID, id, "session", action, "not the session owner")
		}
	}

	return session, nil
}

func (s *sessionService) checkTaskAccess(ctx context.Context, task *models.GameTask, userID, action string) error {
	if task.OwnerID == userID {
		return nil
	}
	isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
	if err != nil || !isAdmin {
		return NewPermissionError(userID, task.ID, "game_task", action, "not the task owner")
	}
	return nil
}

// checkTaskListAccess guards task-scoped listings without loading the task;
// an existence probe plus an ownership probe is all that is needed.
func (s *sessionService) checkTaskListAccess(ctx context.Context, gameTaskID uint, userID string) error {
	exists, err := s.repo.GameTask().ExistsByID(ctx, s.db, gameTaskID)
	if err != nil {
		return fmt.Errorf("failed to check game task: %w", err)
	}
	if !exists {
		return ErrGameTaskNotFound
	}

	owner, err := s.repo.GameTask().IsOwner(ctx, s.db, gameTaskID, userID)
	if err != nil {
		return fmt.Errorf("failed to check game task ownership: %w", err)
	}
	if !owner {
		isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
		if err != nil || !isAdmin {
			return NewPermissionError(userID, gameTaskID, "game_task", "list_sessions", "not the task owner")
		}
	}
	return nil
}

// autoFinishIfExpired closes a timed session whose deadline has passed.
// Expiry is evaluated on read; no background job exists.
func (s *sessionService) autoFinishIfExpired(ctx context.Context, session *models.GameTaskSession) (*models.GameTaskSession, error) {
	if !session.IsActive() || !session.IsTimeOver(time.Now()) {
		return session, nil
	}

	if err := s.finishSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) finishSession(ctx context.Context, session *models.GameTaskSession) error {
	now := time.Now()
	session.Status = models.SessionFinished
	session.FinishedAt = &now

	if err := s.repo.Session().Update(ctx, nil, session); err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}

	s.publishSessionEvent(ctx, events.SessionFinished, session)

	s.logger.Info("Session finished", "session_id", session.ID)

	return nil
}

// taskDurationSeconds sums the per-question time limits of a task
func (s *sessionService) taskDurationSeconds(ctx context.Context, taskID uint) (int, error) {
	task, err := s.repo.GameTask().GetWithQuestions(ctx, s.db, taskID)
	if err != nil {
		return 0, fmt.Errorf("failed to load questions: %w", err)
	}

	total := 0
	for _, link := range task.Questions {
		if link.Question != nil {
			total += link.Question.TimeLimit
		}
	}
	return total, nil
}

func (s *sessionService) generateUniquePin(ctx context.Context, repo repositories.Repository) (string, error) {
	for attempt := 0; attempt < pinAttempts; attempt++ {
		pin := fmt.Sprintf("%06d", rand.Intn(1000000))

		exists, err := repo.Session().ExistsByPin(ctx, nil, pin)
		if err != nil {
			return "", fmt.Errorf("failed to check pin uniqueness: %w", err)
		}
		if !exists {
			return pin, nil
		}
	}
	return "", ErrPinGenerationFailed
}

func (s *sessionService) toSessionResponse(ctx context.Context, session *models.GameTaskSession, userID string) (*SessionResponse, error) {
	participantCount, err := s.repo.Participant().CountBySession(ctx, s.db, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	questionCount, err := s.repo.GameTask().QuestionCount(ctx, s.db, session.GameTaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	return &SessionResponse{
		GameTaskSession:  session,
		ParticipantCount: participantCount,
		QuestionCount:    questionCount,
		RemainingSeconds: session.RemainingSeconds(time.Now()),
		CanStart:         session.IsPending(),
		CanFinish:        !session.IsFinished(),
		CanDelete:        len(s.validator.GetBusinessValidator().ValidateDeletePermission(session.Status, participantCount)) == 0,
	}, nil
}

func (s *sessionService) publishSessionEvent(ctx context.Context, eventType string, session *models.GameTaskSession) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(eventType, map[string]interface{}{
		"session_id":   session.ID,
		"game_task_id": session.GameTaskID,
		"status":       session.Status,
		"pin_code":     session.PinCode,
		"created_by":   session.CreatedBy,
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicGameplay, event); err != nil {
		s.logger.Error("Failed to publish session event",
			"event_type", eventType,
			"session_id", session.ID,
			"error", err)
	}
}
