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

type GameTaskPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewGameTaskPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.GameTaskRepository {
	return &GameTaskPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (g *GameTaskPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return g.db
}

func (g *GameTaskPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.GameTask, error) {
	db := g.getDB(tx)
	var task models.GameTask
	if err := db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (g *GameTaskPostgreSQL) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.GameTask, error) {
	db := g.getDB(tx)
	var task models.GameTask
	if err := db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("game_task_questions.\"order\" ASC, game_task_questions.id ASC")
		}).
		Preload("Questions.Question").
		Preload("Questions.Question.Options").
		First(&task, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get game task with questions: %w", err)
	}
	return &task, nil
}

func (g *GameTaskPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.GameTaskFilters) ([]*models.GameTask, int64, error) {
	db := g.getDB(tx)
	var tasks []*models.GameTask
	var total int64

	query := db.WithContext(ctx).Model(&models.GameTask{})
	query = g.helpers.ApplyGameTaskFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = g.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ExistsByID is a cheap existence probe; tasks are never deleted while
// sessions reference them, so a short cache is safe.
func (g *GameTaskPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := g.getDB(tx)

	probe := func() (bool, error) {
		var count int64
		err := db.WithContext(ctx).
			Model(&models.GameTask{}).
			Where("id = ?", id).
			Count(&count).Error
		if err != nil {
			return false, err
		}
		return count > 0, nil
	}

	if tx != nil {
		return probe()
	}

	cacheKey := fmt.Sprintf("game_task:%d", id)
	var exists bool
	err := g.cacheManager.Exists.CacheOrExecute(ctx, cacheKey, &exists, cache.ExistsCacheConfig.TTL, func() (interface{}, error) {
		found, err := probe()
		if err != nil {
			return nil, err
		}
		return found, nil
	})
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (g *GameTaskPostgreSQL) IsOwner(ctx context.Context, tx *gorm.DB, id uint, userID string) (bool, error) {
	db := g.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.GameTask{}).
		Where("id = ? AND owner_id = ?", id, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (g *GameTaskPostgreSQL) QuestionCount(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	db := g.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.GameTaskQuestion{}).
		Where("game_task_id = ?", id).
		Count(&count).Error
	return count, err
}
