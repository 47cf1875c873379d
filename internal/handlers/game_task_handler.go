package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyna-edu/gameplay-service/internal/services"
	"github.com/oyna-edu/gameplay-service/internal/utils"
	"github.com/oyna-edu/gameplay-service/internal/validator"
)

// GameTaskHandler serves read access to quiz definitions
type GameTaskHandler struct {
	BaseHandler
	gameTaskService services.GameTaskService
	validator       *validator.Validator
}

func NewGameTaskHandler(
	gameTaskService services.GameTaskService,
	validator *validator.Validator,
	logger utils.Logger,
) *GameTaskHandler {
	return &GameTaskHandler{
		BaseHandler:     NewBaseHandler(logger),
		gameTaskService: gameTaskService,
		validator:       validator,
	}
}

// GetGameTask retrieves a game task by ID
// @Summary Get game task
// @Tags game-tasks
// @Produce json
// @Param id path uint true "Game task ID"
// @Success 200 {object} services.GameTaskResponse
// @Failure 404 {object} ErrorResponse
// @Router /game-tasks/{id} [get]
func (h *GameTaskHandler) GetGameTask(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	task, err := h.gameTaskService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// ListGameTasks lists the caller's game tasks
// @Summary List game tasks
// @Tags game-tasks
// @Produce json
// @Success 200 {object} services.GameTaskListResponse
// @Router /game-tasks [get]
func (h *GameTaskHandler) ListGameTasks(c *gin.Context) {
	var req services.GameTaskListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	tasks, err := h.gameTaskService.List(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}
