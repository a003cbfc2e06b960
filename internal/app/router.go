package app

import (
	"mytutor/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	router.GET("/", c.health.Root)
	router.GET("/health", c.health.HealthCheck)

	// accounts and tutors
	router.POST("/register", c.auth.Register)
	router.POST("/login", c.auth.Login)
	router.POST("/select-subject", c.tutor.SelectSubject)
	router.GET("/tutor-response/:username", c.tutor.GetTutorResponse)

	// text generation
	router.POST("/generate-quiz", c.ai.GenerateQuiz)
	router.GET("/quizzes", c.ai.ListQuizzes)
	router.POST("/summarize", c.ai.Summarize)
	router.POST("/answer-question", c.ai.AnswerQuestion)
}
