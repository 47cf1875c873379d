package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oyna-edu/gameplay-service/internal/cache"
	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
)

type ParticipantPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewParticipantPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ParticipantRepository {
	return &ParticipantPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (p *ParticipantPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *ParticipantPostgreSQL) Create(ctx context.Context, tx *gorm.DB, participant *models.Participant) error {
	db := p.getDB(tx)
	if err := db.WithContext(ctx).Create(participant).Error; err != nil {
		return err
	}
	// New joiners appear in the standings immediately
	cache.SafeInvalidatePattern(ctx, p.cacheManager.Leaderboard, fmt.Sprintf("session:%d*", participant.SessionID))
	return nil
}

func (p *ParticipantPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Participant, error) {
	db := p.getDB(tx)
	var participant models.Participant
	if err := db.WithContext(ctx).First(&participant, id).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func (p *ParticipantPostgreSQL) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Participant, error) {
	db := p.getDB(tx)
	var participant models.Participant
	if err := db.WithContext(ctx).
		Where("token = ?", token).
		Preload("Session").
		First(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

// GetByIDForUpdate locks the participant row for the duration of the
// enclosing transaction.
func (p *ParticipantPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Participant, error) {
	db := p.getDB(tx)
	var participant models.Participant
	if err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&participant, id).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func (p *ParticipantPostgreSQL) Update(ctx context.Context, tx *gorm.DB, participant *models.Participant) error {
	db := p.getDB(tx)
	if err := db.WithContext(ctx).Save(participant).Error; err != nil {
		return err
	}
	// Standings change with every score update
	cache.SafeInvalidatePattern(ctx, p.cacheManager.Leaderboard, fmt.Sprintf("session:%d*", participant.SessionID))
	return nil
}

func (p *ParticipantPostgreSQL) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.Participant, error) {
	db := p.getDB(tx)
	var participants []*models.Participant
	if err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (p *ParticipantPostgreSQL) NicknamesBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]string, error) {
	db := p.getDB(tx)
	var nicknames []string
	if err := db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("session_id = ?", sessionID).
		Pluck("nickname", &nicknames).Error; err != nil {
		return nil, err
	}
	return nicknames, nil
}

func (p *ParticipantPostgreSQL) CountBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error) {
	db := p.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

// Leaderboard ranks by score, then correct answers, then earliest finish.
// Unfinished participants sort after finished ones at equal score because
// finished_at is NULL. Plain reads go through a short-lived cache; score
// updates invalidate it.
func (p *ParticipantPostgreSQL) Leaderboard(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*repositories.LeaderboardEntry, error) {
	if tx == nil {
		cacheKey := fmt.Sprintf("session:%d", sessionID)
		var entries []*repositories.LeaderboardEntry
		err := p.cacheManager.Leaderboard.CacheOrExecute(ctx, cacheKey, &entries, cache.LeaderboardCacheConfig.TTL, func() (interface{}, error) {
			return p.buildLeaderboard(ctx, p.db, sessionID)
		})
		if err != nil {
			return nil, err
		}
		return entries, nil
	}
	return p.buildLeaderboard(ctx, tx, sessionID)
}

func (p *ParticipantPostgreSQL) buildLeaderboard(ctx context.Context, db *gorm.DB, sessionID uint) ([]*repositories.LeaderboardEntry, error) {
	var participants []*models.Participant
	if err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("score DESC, correct_count DESC, finished_at ASC NULLS LAST, started_at ASC, id ASC").
		Find(&participants).Error; err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]*repositories.LeaderboardEntry, len(participants))
	for i, participant := range participants {
		entries[i] = &repositories.LeaderboardEntry{
			Rank:          i + 1,
			ParticipantID: participant.ID,
			Nickname:      participant.Nickname,
			Score:         participant.Score,
			CorrectCount:  participant.CorrectCount,
			IsFinished:    participant.IsFinished,
			StartedAt:     participant.StartedAt,
			FinishedAt:    participant.FinishedAt,
		}
	}
	return entries, nil
}
