package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyna-edu/gameplay-service/internal/services"
	"github.com/oyna-edu/gameplay-service/internal/utils"
	"github.com/oyna-edu/gameplay-service/internal/validator"
)

// SessionHandler serves the teacher-facing session lifecycle
type SessionHandler struct {
	BaseHandler
	sessionService     services.SessionService
	leaderboardService services.LeaderboardService
	exportService      services.ExportService
	validator          *validator.Validator
}

func NewSessionHandler(
	sessionService services.SessionService,
	leaderboardService services.LeaderboardService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:        NewBaseHandler(logger),
		sessionService:     sessionService,
		leaderboardService: leaderboardService,
		exportService:      exportService,
		validator:          validator,
	}
}

// CreateSession creates a new live session for a game task
// @Summary Create session
// @Description Creates a pending live session with a fresh pin code
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.CreateSessionRequest true "Session data"
// @Success 201 {object} services.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// CreateSessionForTask creates a session under a game task path
// @Summary Create session for game task
// @Tags game-tasks
// @Accept json
// @Produce json
// @Param id path uint true "Game task ID"
// @Param session body services.CreateSessionRequest true "Session data"
// @Success 201 {object} services.SessionResponse
// @Router /game-tasks/{id}/sessions [post]
func (h *SessionHandler) CreateSessionForTask(c *gin.Context) {
	taskID := h.parseIDParam(c, "id")
	if taskID == 0 {
		return
	}

	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.GameTaskID = taskID

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ListSessionsForTask lists the caller's sessions of one game task
// @Summary List sessions for game task
// @Tags game-tasks
// @Produce json
// @Param id path uint true "Game task ID"
// @Success 200 {object} services.SessionListResponse
// @Router /game-tasks/{id}/sessions [get]
func (h *SessionHandler) ListSessionsForTask(c *gin.Context) {
	taskID := h.parseIDParam(c, "id")
	if taskID == 0 {
		return
	}

	var req services.SessionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}
	req.GameTaskID = &taskID

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	sessions, err := h.sessionService.List(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// GetSession retrieves a session by ID
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// ListSessions lists the caller's sessions
// @Summary List sessions
// @Tags sessions
// @Produce json
// @Success 200 {object} services.SessionListResponse
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	var req services.SessionListRequest
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

	sessions, err := h.sessionService.List(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// StartSession flips a pending session to active
// @Summary Start session
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/start [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Starting session", "session_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// FinishSession closes a session
// @Summary Finish session
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.SessionResponse
// @Router /sessions/{id}/finish [post]
func (h *SessionHandler) FinishSession(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Finishing session", "session_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Finish(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteSession deletes a session that never ran
// @Summary Delete session
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} SuccessResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting session", "session_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.sessionService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Session deleted"})
}

// GetLeaderboard returns the live standings
// @Summary Session leaderboard
// @Tags sessions
// @Produce json
// @Param id path uint true "Session ID"
// @Success 200 {object} services.LeaderboardResponse
// @Router /sessions/{id}/leaderboard [get]
func (h *SessionHandler) GetLeaderboard(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	leaderboard, err := h.leaderboardService.Get(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, leaderboard)
}

// ExportResults downloads the session standings as an xlsx workbook
// @Summary Export session results
// @Tags sessions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Session ID"
// @Success 200 {file} binary
// @Router /sessions/{id}/export [get]
func (h *SessionHandler) ExportResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Exporting session results", "session_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	data, filename, err := h.exportService.ExportSessionResults(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
