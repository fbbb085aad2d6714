package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pmihaylov/user-management-api/internal/domain/entity"
	handlers "github.com/pmihaylov/user-management-api/internal/interface/http"
	"github.com/pmihaylov/user-management-api/internal/interface/middleware"
	"github.com/pmihaylov/user-management-api/pkg/helpers"
)

// UserModule wires the token-protected user directory routes.
// Listing and lookup are open to any authenticated role; update and delete
// require ADMIN.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.BearerAuth(m.JWT))
	users.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByEmail(), nil))

	anyRole := middleware.RequireRoles(entity.RoleUser.Authority(), entity.RoleAdmin.Authority())
	adminOnly := middleware.RequireRoles(entity.RoleAdmin.Authority())

	users.GET("", anyRole, m.Handler.List)
	users.GET("/by-email", anyRole, m.Handler.GetByEmail)
	users.PATCH("/:id", adminOnly, m.Handler.Update)
	users.DELETE("/:id", adminOnly, m.Handler.Delete)
}
