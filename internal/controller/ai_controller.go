package controller

import (
	"errors"
	"strconv"

	"mytutor/internal/catalog"
	"mytutor/internal/model"
	"mytutor/internal/repository"
	"mytutor/internal/service"
	"mytutor/internal/util"
	"mytutor/pkg/logger"
	"mytutor/pkg/monitoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AIController struct {
	AIService *service.AIService
	QuizRepo  *repository.QuizRepository
}

func NewAIController(aiService *service.AIService, quizRepo *repository.QuizRepository) *AIController {
	return &AIController{AIService: aiService, QuizRepo: quizRepo}
}

const (
	defaultQuizListLimit = 20
	maxQuizListLimit     = 100
)

type QuizRequest struct {
	Topic      string `json:"topic" binding:"required"`
	Difficulty string `json:"difficulty"`
}

type QuizResponse struct {
	Topic       string `json:"topic"`
	Difficulty  string `json:"difficulty"`
	QuizContent string `json:"quiz_content"`
}

type SummarizeRequest struct {
	Text string `json:"text" binding:"required"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}

type QuestionRequest struct {
	Question string `json:"question" binding:"required"`
	Context  string `json:"context"`
}

type AnswerResponse struct {
	Answer string `json:"answer"`
}

func (c *AIController) GenerateQuiz(ctx *gin.Context) {
	var req QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ValidationError(ctx, err)
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = catalog.DefaultDifficulty
	}

	content, err := c.AIService.GenerateQuiz(ctx.Request.Context(), req.Topic, req.Difficulty)
	monitoring.ObserveModelCall("quiz", err)
	if err != nil {
		c.fail(ctx, "Generation error", err)
		return
	}

	record := &model.QuizRecord{Topic: req.Topic, Difficulty: req.Difficulty, Content: content}
	if err := c.QuizRepo.Create(record); err != nil {
		logger.Log.Warn("Failed to store quiz", zap.String("topic", req.Topic), zap.Error(err))
	}

	util.Success(ctx, QuizResponse{
		Topic:       req.Topic,
		Difficulty:  req.Difficulty,
		QuizContent: content,
	})
}

// ListQuizzes returns recently generated quizzes, optionally for one topic.
func (c *AIController) ListQuizzes(ctx *gin.Context) {
	limit := defaultQuizListLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			util.BadRequest(ctx, "limit must be a positive integer")
			return
		}
		limit = min(n, maxQuizListLimit)
	}

	quizzes, err := c.QuizRepo.ListRecent(ctx.Query("topic"), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"quizzes": quizzes})
}

func (c *AIController) Summarize(ctx *gin.Context) {
	var req SummarizeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ValidationError(ctx, err)
		return
	}

	summary, err := c.AIService.Summarize(ctx.Request.Context(), req.Text)
	monitoring.ObserveModelCall("summarize", err)
	if err != nil {
		c.fail(ctx, "Summarization error", err)
		return
	}

	util.Success(ctx, SummarizeResponse{Summary: summary})
}

func (c *AIController) AnswerQuestion(ctx *gin.Context) {
	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ValidationError(ctx, err)
		return
	}

	answer, err := c.AIService.Answer(ctx.Request.Context(), req.Question, req.Context)
	monitoring.ObserveModelCall("answer", err)
	if err != nil {
		c.fail(ctx, "Answering error", err)
		return
	}

	util.Success(ctx, AnswerResponse{Answer: answer})
}

// fail maps a model failure to 503 when nothing is configured, otherwise to
// 500 carrying the error text.
func (c *AIController) fail(ctx *gin.Context, msg string, err error) {
	if errors.Is(err, util.ErrModelNotLoaded) {
		util.ServiceUnavailable(ctx, err.Error())
		return
	}
	logger.Log.Error(msg, zap.String("request_id", ctx.GetString(util.RequestIDKey)), zap.Error(err))
	util.InternalServerError(ctx, err.Error())
}
