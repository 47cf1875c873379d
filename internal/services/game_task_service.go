package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
	"github.com/oyna-edu/gameplay-service/internal/validator"
)

// gameTaskService serves read access to quiz definitions. Authoring happens
// in the content service; here tasks are only browsed and run.
type gameTaskService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewGameTaskService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) GameTaskService {
	return &gameTaskService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *gameTaskService) GetByID(ctx context.Context, id uint, userID string) (*GameTaskResponse, error) {
	task, err := s.repo.GameTask().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrGameTaskNotFound
		}
		return nil, fmt.Errorf("failed to get game task: %w", err)
	}

	if task.OwnerID != userID && task.Status != models.GameTaskPublished {
		isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
		if err != nil || !isAdmin {
			return nil, NewPermissionError(userID, id, "game_task", "read", "task is not published")
		}
	}

	return s.toGameTaskResponse(ctx, task, userID)
}

func (s *gameTaskService) List(ctx context.Context, req *GameTaskListRequest, userID string) (*GameTaskListResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	filters := repositories.GameTaskFilters{
		Status:    req.Status,
		OwnerID:   &userID,
		Query:     req.Query,
		Limit:     req.Limit,
		Offset:    req.Offset,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if filters.Limit <= 0 {
		filters.Limit = 20
	}

	tasks, total, err := s.repo.GameTask().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list game tasks: %w", err)
	}

	responses := make([]*GameTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		response, err := s.toGameTaskResponse(ctx, task, userID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}

	return &GameTaskListResponse{
		GameTasks: responses,
		Total:     total,
		Page:      filters.Offset/filters.Limit + 1,
		Size:      filters.Limit,
	}, nil
}

func (s *gameTaskService) toGameTaskResponse(ctx context.Context, task *models.GameTask, userID string) (*GameTaskResponse, error) {
	questionCount, err := s.repo.GameTask().QuestionCount(ctx, s.db, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	return &GameTaskResponse{
		GameTask:      task,
		QuestionCount: questionCount,
		IsOwner:       task.OwnerID == userID,
	}, nil
}
