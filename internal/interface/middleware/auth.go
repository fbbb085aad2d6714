package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pmihaylov/user-management-api/pkg/helpers"
	"github.com/pmihaylov/user-management-api/pkg/response"
)

// Context keys populated by BearerAuth.
const (
	CtxEmailKey = "userEmail"
	CtxRoleKey  = "userRole"
)

// BearerAuth validates the Authorization bearer token and stashes the caller's
// identity (subject email) and role claim in the Gin context.
func BearerAuth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid token", err.Error())
			return
		}
		c.Set(CtxEmailKey, claims.Subject)
		c.Set(CtxRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRoles gates a route on the caller's role claim. Authorities are the
// ROLE_-prefixed names carried in the token, e.g. RequireRoles("ROLE_ADMIN").
func RequireRoles(authorities ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(authorities))
	for _, a := range authorities {
		allowed[a] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(CtxRoleKey)
		if _, ok := allowed[role]; !ok {
			response.AbortError(c, http.StatusForbidden, "insufficient role", nil)
			return
		}
		c.Next()
	}
}
