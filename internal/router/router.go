package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-service/internal/handler"
	"github.com/iliyamo/todo-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth mounts the credential endpoints under /auth.  limiter guards
// the whole group; /auth/me and /auth/logout additionally require a bearer
// token verified by v.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, v middleware.TokenVerifier, limiter echo.MiddlewareFunc) {
	g := e.Group("/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	requireAuth := middleware.JWTAuth(v)
	g.GET("/me", a.Me, requireAuth)
	g.POST("/logout", a.Logout, requireAuth)
}

// RegisterTodos mounts the todo endpoints.  The collection answers on both
// /todos and /todos/.
func RegisterTodos(e *echo.Echo, t *handler.TodoHandler, v middleware.TokenVerifier) {
	g := e.Group("/todos", middleware.JWTAuth(v))
	for _, p := range []string{"", "/"} {
		g.GET(p, t.List)
		g.POST(p, t.Create)
	}
	g.GET("/:id", t.Get)
	g.PUT("/:id", t.Update)
	g.DELETE("/:id", t.Delete)
}
