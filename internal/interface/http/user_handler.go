package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pmihaylov/user-management-api/internal/application"
	"github.com/pmihaylov/user-management-api/internal/domain/entity"
	"github.com/pmihaylov/user-management-api/pkg/response"
	"github.com/pmihaylov/user-management-api/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// userSummary is the outward projection of a user. The password hash and role
// are never serialized.
type userSummary struct {
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	DateOfBirth entity.Date `json:"dateOfBirth"`
	PhoneNumber string      `json:"phoneNumber"`
	Email       string      `json:"email"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func toSummary(u *entity.User) userSummary {
	return userSummary{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DateOfBirth: u.DateOfBirth,
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
	}
}

type updateRequest struct {
	FirstName   *string      `json:"firstName" binding:"omitempty,name"`
	LastName    *string      `json:"lastName" binding:"omitempty,name"`
	DateOfBirth *entity.Date `json:"dateOfBirth"`
	PhoneNumber *string      `json:"phoneNumber" binding:"omitempty,phone"`
	Email       *string      `json:"email" binding:"omitempty,email"`
	Password    *string      `json:"password" binding:"omitempty,pwd"`
}

// List handles GET /api/v1/users?search=
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	summaries := make([]userSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, toSummary(&users[i]))
	}
	response.Success(c, http.StatusOK, summaries, "users")
}

// GetByEmail handles GET /api/v1/users/by-email?email=
func (h *UserHandler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error(c, http.StatusBadRequest, "invalid payload", []string{"email: is required"})
		return
	}
	u, err := h.Svc.GetByEmail(c.Request.Context(), email)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toSummary(u), "user")
}

// Update handles PATCH /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", []string{"id: must be a valid UUID"})
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToLines(err))
		return
	}

	err := h.Svc.PartialUpdate(c.Request.Context(), id, application.UpdateUserInput{
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
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", []string{"id: must be a valid UUID"})
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
