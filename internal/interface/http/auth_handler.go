package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pmihaylov/user-management-api/internal/application"
	"github.com/pmihaylov/user-management-api/internal/domain/entity"
	"github.com/pmihaylov/user-management-api/pkg/response"
	"github.com/pmihaylov/user-management-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	FirstName   string      `json:"firstName" binding:"required,name"`
	LastName    string      `json:"lastName" binding:"required,name"`
	DateOfBirth entity.Date `json:"dateOfBirth" binding:"required"`
	PhoneNumber string      `json:"phoneNumber" binding:"required,phone"`
	Email       string      `json:"email" binding:"required,email"`
	Password    string      `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register handles POST /api/v1/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToLines(err))
		return
	}

	token, err := h.Svc.Register(c.Request.Context(), application.CreateUserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, tokenResponse{Token: token}, "user registered")
}

// Login handles POST /api/v1/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToLines(err))
		return
	}

	token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, tokenResponse{Token: token}, "login successful")
}
