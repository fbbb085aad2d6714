package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pmihaylov/user-management-api/internal/application"
	handlers "github.com/pmihaylov/user-management-api/internal/interface/http"
	"github.com/pmihaylov/user-management-api/internal/router/modules"
	"github.com/pmihaylov/user-management-api/pkg/helpers"
)

// Deps carries the explicitly constructed components every module may need.
// Wiring is done once at startup and passed down; there is no global registry
// of singletons.
type Deps struct {
	Users  *application.UserService
	Auth   *application.AuthService
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

// InitModules builds the HTTP handlers from the services and registers all
// feature modules with the router registry.
func InitModules(r *Registry, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Auth, d.Logger)
	userHandler := handlers.NewUserHandler(d.Users, d.Logger)

	r.Add(modules.NewAuthModule(authHandler, d.Redis))
	r.Add(modules.NewUserModule(userHandler, d.JWT, d.Redis))
}
