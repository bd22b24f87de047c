package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yoockh/teachback/internal/api/handlers"
	"github.com/yoockh/teachback/internal/api/middleware"
)

type Deps struct {
	Session *handlers.SessionHandler
	Quota   *handlers.QuotaHandler
	WS      *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/session/start", d.Session.Start)
	auth.GET("/session/:session_id", d.Session.Get)
	auth.POST("/session/:session_id/input", d.Session.SubmitInput)
	auth.POST("/session/:session_id/acknowledge", d.Session.Acknowledge)
	auth.POST("/session/:session_id/exam/start", d.Session.StartExam)
	auth.POST("/session/:session_id/exam/answer", d.Session.SubmitAnswer)
	auth.POST("/session/:session_id/end", d.Session.End)
	auth.GET("/session/:session_id/transcript", d.Session.Transcript)
	auth.GET("/session/:session_id/transitions", d.Session.Transitions)

	auth.GET("/quota", d.Quota.Me)
	auth.GET("/quota/:user_id", middleware.RequireAdmin(), d.Quota.User)

	// WebSocket event feed
	auth.GET("/ws/session/:session_id", d.WS.SessionEvents)
}
