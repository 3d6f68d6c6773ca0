package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/social-media-api/internal/handler"
	"github.com/iliyamo/social-media-api/internal/metrics"
)

// RegisterRoutes registers the operational endpoints: a health check that
// pings db (nil skips the ping) and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAccounts registers registration, login and the account admin
// routes.
func RegisterAccounts(e *echo.Echo, a *handler.AccountHandler) {
	e.POST("/register", a.Register)
	e.POST("/login", a.Login)

	g := e.Group("/accounts")
	g.GET("", a.ListAccounts)
	g.GET("/:account_id", a.GetAccount)
	g.PUT("/:account_id", a.UpdateAccount)
	g.DELETE("/:account_id", a.DeleteAccount)
}

// RegisterMessages registers the message routes, including the per-account
// listing under /accounts.
func RegisterMessages(e *echo.Echo, m *handler.MessageHandler) {
	g := e.Group("/messages")
	g.POST("", m.CreateMessage)
	g.GET("", m.ListMessages)
	g.GET("/:message_id", m.GetMessage)
	g.PATCH("/:message_id", m.UpdateMessage)
	g.DELETE("/:message_id", m.DeleteMessage)

	e.GET("/accounts/:account_id/messages", m.ListMessagesByAccount)
}
