package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/handler"
)

// RegisterRoutes registers the health checks, which need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/api/health", handler.APIHealth)
}

// RegisterAuth registers the credential endpoints under /api/auth.  None of
// them require a token; limiter (typically the Redis token bucket) guards
// the whole group.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/sign-out", a.SignOut)
}

// RegisterTasks registers the task endpoints under /api/tasks.  guard runs
// before every handler and establishes the caller's identity.
func RegisterTasks(e *echo.Echo, t *handler.TaskHandler, guard echo.MiddlewareFunc) {
	g := e.Group("/api/tasks", guard)
	g.GET("", t.List)
	g.POST("", t.Create)
	g.GET("/:id", t.Get)
	g.PUT("/:id", t.Update)
	g.DELETE("/:id", t.Delete)
	g.PATCH("/:id/complete", t.Complete)
}
