package router

import "github.com/gin-gonic/gin"

// Module is a feature area (auth, users) that mounts its own routes and
// per-route middleware on the versioned API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
