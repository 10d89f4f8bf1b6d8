// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tickzi/tickzi/internal/handler"
	"github.com/tickzi/tickzi/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers and
// monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the register and login endpoints under
// /v1/auth. Both are unauthenticated and both return a token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
}

// RegisterEvents registers the event endpoints. Browsing and searching
// the public catalog needs no token; everything that creates, mutates
// or exposes owner-scoped data runs behind JWTAuth. Echo matches
// static segments such as /events/search before the /events/:id
// parameter route, so the public detail route stays last without
// shadowing anything.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, jwtSecret string) {
	e.GET("/v1/events", h.List)
	e.GET("/v1/events/search", h.Search)

	auth := e.Group("/v1/events", middleware.JWTAuth(jwtSecret))
	auth.GET("/my-events", h.ListMine)
	auth.GET("/my-events/search", h.SearchMine)
	auth.POST("", h.Create)
	auth.PUT("/:id", h.Update)
	auth.DELETE("/:id", h.Delete)
	auth.GET("/:id/tickets", h.ListEventTickets)

	e.GET("/v1/events/:id", h.Get)
}

// RegisterTickets registers the ticket endpoints. All of them operate
// on the caller's own data and require a token.
func RegisterTickets(e *echo.Echo, h *handler.TicketHandler, jwtSecret string) {
	auth := e.Group("/v1/tickets", middleware.JWTAuth(jwtSecret))
	auth.POST("", h.Reserve)
	auth.DELETE("/:id", h.Delete)
	auth.GET("", h.ListMine)
	auth.GET("/search", h.SearchMine)
}
