package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/cache"
	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
)

type SessionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager

	// inTx marks a repository bound to an open transaction. Reads then go
	// straight to the transaction so locked rows are never shadowed by a
	// cached copy.
	inTx bool
}

func NewSessionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SessionRepository {
	return &SessionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func newSessionPostgreSQLTx(tx *gorm.DB, redisClient *redis.Client) repositories.SessionRepository {
	return &SessionPostgreSQL{
		db:           tx,
		helpers:      NewSharedHelpers(tx),
		cacheManager: cache.NewCacheManager(redisClient),
		inTx:         true,
	}
}

func (s *SessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.GameTaskSession) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Create(session).Error
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.GameTaskSession, error) {
	if tx != nil || s.inTx {
		var session models.GameTaskSession
		if err := s.getDB(tx).WithContext(ctx).First(&session, id).Error; err != nil {
			return nil, err
		}
		return &session, nil
	}

	cacheKey := fmt.Sprintf("id:%d", id)
	var session models.GameTaskSession
	err := s.cacheManager.Session.CacheOrExecute(ctx, cacheKey, &session, cache.SessionCacheConfig.TTL, func() (interface{}, error) {
		var dbSession models.GameTaskSession
		if err := s.db.WithContext(ctx).First(&dbSession, id).Error; err != nil {
			return nil, err
		}
		return &dbSession, nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) GetByIDWithTask(ctx context.Context, tx *gorm.DB, id uint) (*models.GameTaskSession, error) {
	db := s.getDB(tx)
	var session models.GameTaskSession
	if err := db.WithContext(ctx).
		Preload("GameTask").
		First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByPin backs the join flow, the hottest lookup while a class is filing
// in. Reads go through the cache; lifecycle updates invalidate the pin key.
func (s *SessionPostgreSQL) GetByPin(ctx context.Context, tx *gorm.DB, pin string) (*models.GameTaskSession, error) {
	if tx != nil || s.inTx {
		var session models.GameTaskSession
		if err := s.getDB(tx).WithContext(ctx).
			Where("pin_code = ?", pin).
			First(&session).Error; err != nil {
			return nil, err
		}
		return &session, nil
	}

	cacheKey := fmt.Sprintf("pin:%s", pin)
	var session models.GameTaskSession
	err := s.cacheManager.Session.CacheOrExecute(ctx, cacheKey, &session, cache.SessionCacheConfig.TTL, func() (interface{}, error) {
		var dbSession models.GameTaskSession
		if err := s.db.WithContext(ctx).
			Where("pin_code = ?", pin).
			First(&dbSession).Error; err != nil {
			return nil, err
		}
		return &dbSession, nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, session *models.GameTaskSession) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Save(session).Error; err != nil {
		return err
	}
	// Status changes must not be served stale
	cache.InvalidateSessionCache(ctx, s.cacheManager, session.ID, session.PinCode)
	return nil
}

func (s *SessionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := s.getDB(tx)

	var pinCode string
	db.WithContext(ctx).
		Model(&models.GameTaskSession{}).
		Where("id = ?", id).
		Pluck("pin_code", &pinCode)

	if err := db.WithContext(ctx).Delete(&models.GameTaskSession{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateSessionCache(ctx, s.cacheManager, id, pinCode)
	return nil
}

func (s *SessionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.GameTaskSession, int64, error) {
	db := s.getDB(tx)
	var sessions []*models.GameTaskSession
	var total int64

	query := db.WithContext(ctx).Model(&models.GameTaskSession{})
	query = s.helpers.ApplySessionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("GameTask").Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (s *SessionPostgreSQL) CountByTaskAndStatus(ctx context.Context, tx *gorm.DB, gameTaskID uint, status models.SessionStatus) (int64, error) {
	db := s.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.GameTaskSession{}).
		Where("game_task_id = ? AND status = ?", gameTaskID, status).
		Count(&count).Error
	return count, err
}

func (s *SessionPostgreSQL) ExistsByPin(ctx context.Context, tx *gorm.DB, pin string) (bool, error) {
	db := s.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.GameTaskSession{}).
		Where("pin_code = ?", pin).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SessionPostgreSQL) Stats(ctx context.Context, tx *gorm.DB, sessionID uint) (*repositories.SessionStats, error) {
	db := s.getDB(tx)
	stats := &repositories.SessionStats{}

	var participantCount, finishedCount int64
	if err := db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("session_id = ?", sessionID).
		Count(&participantCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}
	if err := db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("session_id = ? AND is_finished = ?", sessionID, true).
		Count(&finishedCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count finished participants: %w", err)
	}

	var avgScore *float64
	if err := db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("session_id = ?", sessionID).
		Select("AVG(score)").
		Scan(&avgScore).Error; err != nil {
		return nil, fmt.Errorf("failed to average scores: %w", err)
	}

	var questionCount int64
	if err := db.WithContext(ctx).
		Model(&models.GameTaskQuestion{}).
		Joins("JOIN game_task_sessions ON game_task_sessions.game_task_id = game_task_questions.game_task_id").
		Where("game_task_sessions.id = ?", sessionID).
		Count(&questionCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	stats.ParticipantCount = int(participantCount)
	stats.FinishedCount = int(finishedCount)
	if avgScore != nil {
		stats.AverageScore = *avgScore
	}
	stats.QuestionCount = int(questionCount)

	return stats, nil
}
