package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oyna-edu/gameplay-service/internal/config"
	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
	"github.com/oyna-edu/gameplay-service/internal/services"
	"github.com/oyna-edu/gameplay-service/internal/utils"
	"github.com/oyna-edu/gameplay-service/internal/validator"
)

type HandlerManager struct {
	sessionHandler  *SessionHandler
	playHandler     *PlayHandler
	gameTaskHandler *GameTaskHandler
	authMiddleware  *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		sessionHandler: NewSessionHandler(
			serviceManager.Session(),
			serviceManager.Leaderboard(),
			serviceManager.Export(),
			validator,
			logger,
		),
		playHandler:     NewPlayHandler(serviceManager.Gameplay(), validator, logger),
		gameTaskHandler: NewGameTaskHandler(serviceManager.GameTask(), validator, logger),
		authMiddleware:  authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	// Play routes - no authentication, the play token is the credential
	play := v1.Group("/play")
	{
		play.POST("/join", hm.playHandler.Join)
		play.GET("/:token/state", hm.playHandler.State)
		play.POST("/:token/answer", hm.playHandler.SubmitAnswer)
		play.POST("/:token/finish", hm.playHandler.Finish)
		play.GET("/:token/result", hm.playHandler.Result)
	}

	// Teacher routes - Casdoor authentication required
	staff := v1.Group("")
	staff.Use(hm.authMiddleware.AuthMiddleware())
	staff.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin))
	{
		sessions := staff.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.CreateSession)
			sessions.GET("", hm.sessionHandler.ListSessions)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.POST("/:id/start", hm.sessionHandler.StartSession)
			sessions.POST("/:id/finish", hm.sessionHandler.FinishSession)
			sessions.DELETE("/:id", hm.sessionHandler.DeleteSession)
			sessions.GET("/:id/leaderboard", hm.sessionHandler.GetLeaderboard)
			sessions.GET("/:id/export", hm.sessionHandler.ExportResults)
		}

		gameTasks := staff.Group("/game-tasks")
		{
			gameTasks.GET("", hm.gameTaskHandler.ListGameTasks)
			gameTasks.GET("/:id", hm.gameTaskHandler.GetGameTask)
			gameTasks.POST("/:id/sessions", hm.sessionHandler.CreateSessionForTask)
			gameTasks.GET("/:id/sessions", hm.sessionHandler.ListSessionsForTask)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "gameplay-service",
		})
	})
}
