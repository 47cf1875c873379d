package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/events"
	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
)

type leaderboardService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	eventPublisher events.EventPublisher
}

func NewLeaderboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, eventPublisher events.EventPublisher) LeaderboardService {
	return &leaderboardService{
		repo:           repo,
		db:             db,
		logger:         logger,
		eventPublisher: eventPublisher,
	}
}

// Get returns the live standings for the session owner. Reading the board
// also settles expiry for timed sessions.
func (s *leaderboardService) Get(ctx context.Context, sessionID uint, userID string) (*LeaderboardResponse, error) {
	session, err := s.repo.Session().GetByID(ctx, s.db, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.CreatedBy != userID {
		isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
		if err != nil || !isAdmin {
			return nil, NewPermissionError(userID, sessionID, "session", "read_leaderboard", "not the session owner")
		}
	}

	if session.IsActive() && session.IsTimeOver(time.Now()) {
		now := time.Now()
		session.Status = models.SessionFinished
		session.FinishedAt = &now
		if err := s.repo.Session().Update(ctx, nil, session); err != nil {
			return nil, fmt.Errorf("failed to finish session: %w", err)
		}
		s.publishFinished(ctx, session)
	}

	entries, err := s.repo.Participant().Leaderboard(ctx, s.db, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	stats, err := s.repo.Session().Stats(ctx, s.db, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session stats: %w", err)
	}

	return &LeaderboardResponse{
		SessionID:        session.ID,
		Status:           session.Status,
		ParticipantCount: stats.ParticipantCount,
		FinishedCount:    stats.FinishedCount,
		AverageScore:     stats.AverageScore,
		Entries:          entries,
	}, nil
}

func (s *leaderboardService) publishFinished(ctx context.Context, session *models.GameTaskSession) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(events.SessionFinished, map[string]interface{}{
		"session_id":   session.ID,
		"game_task_id": session.GameTaskID,
		"status":       session.Status,
		"pin_code":     session.PinCode,
		"created_by":   session.CreatedBy,
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicGameplay, event); err != nil {
		s.logger.Error("Failed to publish session event",
			"event_type", events.SessionFinished,
			"session_id", session.ID,
			"error", err)
	}
}
