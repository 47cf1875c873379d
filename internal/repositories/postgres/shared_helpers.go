package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplySessionFilters applies common filters to session queries
func (h *SharedHelpers) ApplySessionFilters(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.GameTaskID != nil {
		query = query.Where("game_task_id = ?", *filters.GameTaskID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyGameTaskFilters applies common filters to game task queries
func (h *SharedHelpers) ApplyGameTaskFilters(query *gorm.DB, filters repositories.GameTaskFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.Query != nil && *filters.Query != "" {
		query = query.Where("title ILIKE ?", "%"+*filters.Query+"%")
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"title":      true,
		"status":     true,
		"started_at": true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// CountSessionsByStatus counts sessions of a game task in a given state
func (h *SharedHelpers) CountSessionsByStatus(ctx context.Context, gameTaskID uint, status models.SessionStatus) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.GameTaskSession{}).
		Where("game_task_id = ? AND status = ?", gameTaskID, status).
		Count(&count).Error
	return count, err
}

// CountParticipants counts participants in a session
func (h *SharedHelpers) CountParticipants(ctx context.Context, sessionID uint) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.Participant{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}
