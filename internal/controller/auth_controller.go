package controller

import (
	"errors"

	"mytutor/internal/service"
	"mytutor/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// LoginResponse carries the profile on file; the last three fields are
// omitted until a subject has been picked.
type LoginResponse struct {
	Message   string `json:"message"`
	Username  string `json:"username"`
	Grade     string `json:"grade,omitempty"`
	Subject   string `json:"subject,omitempty"`
	TutorName string `json:"tutor_name,omitempty"`
}

func (c *AuthController) Register(ctx *gin.Context) {
	var req CredentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ValidationError(ctx, err)
		return
	}

	user, err := c.AuthService.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, util.ErrUsernameTaken) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, RegisterResponse{
		Message:  "User registered successfully",
		Username: user.Username,
	})
}

func (c *AuthController) Login(ctx *gin.Context) {
	var req CredentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ValidationError(ctx, err)
		return
	}

	user, err := c.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			util.Unauthorized(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, LoginResponse{
		Message:   "Login successful",
		Username:  user.Username,
		Grade:     user.Grade,
		Subject:   user.Subject,
		TutorName: user.TutorName,
	})
}
