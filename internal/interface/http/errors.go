package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pmihaylov/user-management-api/internal/apperrors"
	"github.com/pmihaylov/user-management-api/pkg/response"
)

// writeDomainError translates a service error into its HTTP status and body.
// Unexpected errors never leak their message to the caller.
func writeDomainError(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	response.Error(c, status, msg, nil)
}
