package v1

import (
	"github.com/gin-gonic/gin"

	"memi-server/internal/infrastructure/auth"
	"memi-server/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
	auth     *auth.Middleware
}

func NewRoutes(provider *handlers.Provider, authMiddleware *auth.Middleware) *Routes {
	return &Routes{handlers: provider, auth: authMiddleware}
}

// Register attaches all v1 routes under the /v1 prefix. Signup and login are
// open; everything else requires a bearer token.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	group.POST("/users/signup", r.handlers.User.Signup)
	group.POST("/users/login", r.handlers.User.Login)

	authed := group.Group("", r.auth.Handler())
	authed.POST("/images", r.handlers.Image.Upload)
	authed.GET("/images", r.handlers.Image.List)
	authed.POST("/tags", r.handlers.Tag.Create)
	authed.GET("/tags", r.handlers.Tag.List)
}
