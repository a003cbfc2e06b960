package controller

import (
	"errors"
	"fmt"

	"mytutor/internal/service"
	"mytutor/internal/util"
	"mytutor/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type TutorController struct {
	TutorService *service.TutorService
}

func NewTutorController(tutorService *service.TutorService) *TutorController {
	return &TutorController{TutorService: tutorService}
}

type SelectSubjectRequest struct {
	Username string `json:"username" binding:"required"`
	Grade    string `json:"grade" binding:"required"`
	Subject  string `json:"subject" binding:"required"`
}

type SelectSubjectResponse struct {
	Message   string `json:"message"`
	TutorName string `json:"tutor_name"`
}

type TutorResponse struct {
	Message   string `json:"message"`
	TutorName string `json:"tutor_name"`
	Grade     string `json:"grade"`
	Subject   string `json:"subject"`
}

func (c *TutorController) SelectSubject(ctx *gin.Context) {
	var req SelectSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ValidationError(ctx, err)
		return
	}

	user, err := c.TutorService.SelectSubject(req.Username, req.Grade, req.Subject)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	monitoring.TutorAssignments.WithLabelValues(user.Grade, user.Subject).Inc()

	util.Success(ctx, SelectSubjectResponse{
		Message:   "Subject and grade updated successfully",
		TutorName: user.TutorName,
	})
}

func (c *TutorController) GetTutorResponse(ctx *gin.Context) {
	user, err := c.TutorService.AssignedTutor(ctx.Param("username"))
	if err != nil {
		c.fail(ctx, err)
		return
	}

	util.Success(ctx, TutorResponse{
		Message:   fmt.Sprintf("Your tutor is %s", user.TutorName),
		TutorName: user.TutorName,
		Grade:     user.Grade,
		Subject:   user.Subject,
	})
}

func (c *TutorController) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrUnknownGrade),
		errors.Is(err, util.ErrUnknownSubject),
		errors.Is(err, util.ErrNoTutorAssigned):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
