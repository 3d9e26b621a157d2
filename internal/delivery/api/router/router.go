// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"students/internal/delivery/api/middleware"
	"students/internal/delivery/api/router/handler"
	"students/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AccountHandler *handler.AccountHandler
	AuthHandler    *handler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	Metrics        *metrics.Metrics
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler *handler.AccountHandler
	authHandler    *handler.AuthHandler
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler: params.AccountHandler,
		authHandler:    params.AuthHandler,
		authMiddleware: params.AuthMiddleware,
		metrics:        params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET(middleware.MetricsPath, echo.WrapHandler(r.metrics.Handler()))

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)
	}

	// Static segments are matched before :id by echo's router.
	students := api.Group("/students")
	{
		students.POST("", r.accountHandler.Create)
		students.GET("", r.accountHandler.List)
		students.GET("/check/username/:username", r.accountHandler.CheckUsername)
		students.GET("/check/email/:email", r.accountHandler.CheckEmail)
		students.GET("/:id", r.accountHandler.Get)
		students.PUT("/:id", r.accountHandler.Update, r.authMiddleware.Authenticate)
		students.DELETE("/:id", r.accountHandler.Delete, r.authMiddleware.Authenticate)
	}
}
