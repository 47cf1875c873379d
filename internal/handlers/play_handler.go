package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyna-edu/gameplay-service/internal/services"
	"github.com/oyna-edu/gameplay-service/internal/utils"
	"github.com/oyna-edu/gameplay-service/internal/validator"
)

// PlayHandler serves the participant flow. These routes are unauthenticated;
// the play token issued on join is the only credential.
type PlayHandler struct {
	BaseHandler
	gameplayService services.GameplayService
	validator       *validator.Validator
}

func NewPlayHandler(
	gameplayService services.GameplayService,
	validator *validator.Validator,
	logger utils.Logger,
) *PlayHandler {
	return &PlayHandler{
		BaseHandler:     NewBaseHandler(logger),
		gameplayService: gameplayService,
		validator:       validator,
	}
}

// Join enters a session by pin code and nickname
// @Summary Join session
// @Description Joins a pending session; returns the play token
// @Tags play
// @Accept json
// @Produce json
// @Param join body services.JoinSessionRequest true "Join data"
// @Success 201 {object} services.JoinResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /play/join [post]
func (h *PlayHandler) Join(c *gin.Context) {
	var req services.JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	response, err := h.gameplayService.Join(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// State returns what the participant screen should render
// @Summary Current play state
// @Tags play
// @Produce json
// @Param token path string true "Play token"
// @Success 200 {object} services.PlayStateResponse
// @Failure 404 {object} ErrorResponse
// @Router /play/{token}/state [get]
func (h *PlayHandler) State(c *gin.Context) {
	token, ok := h.playToken(c)
	if !ok {
		return
	}

	state, err := h.gameplayService.CurrentState(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// SubmitAnswer records one answer for the current question
// @Summary Submit answer
// @Tags play
// @Accept json
// @Produce json
// @Param token path string true "Play token"
// @Param answer body services.SubmitAnswerRequest true "Answer data"
// @Success 200 {object} services.SubmitAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /play/{token}/answer [post]
func (h *PlayHandler) SubmitAnswer(c *gin.Context) {
	token, ok := h.playToken(c)
	if !ok {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	response, err := h.gameplayService.SubmitAnswer(c.Request.Context(), token, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Finish ends the participant's run early
// @Summary Finish play
// @Tags play
// @Produce json
// @Param token path string true "Play token"
// @Success 200 {object} services.PlayStateResponse
// @Router /play/{token}/finish [post]
func (h *PlayHandler) Finish(c *gin.Context) {
	token, ok := h.playToken(c)
	if !ok {
		return
	}

	state, err := h.gameplayService.FinishEarly(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// Result serves the personal summary and per-question review
// @Summary Play result
// @Tags play
// @Produce json
// @Param token path string true "Play token"
// @Success 200 {object} services.ResultResponse
// @Failure 409 {object} ErrorResponse
// @Router /play/{token}/result [get]
func (h *PlayHandler) Result(c *gin.Context) {
	token, ok := h.playToken(c)
	if !ok {
		return
	}

	result, err := h.gameplayService.Result(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PlayHandler) playToken(c *gin.Context) (string, bool) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Play token is required",
		})
		return "", false
	}
	return token, true
}
