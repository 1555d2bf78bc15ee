// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"parish/internal/delivery/http/middleware"
	"parish/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	DonationHandler *handler.DonationHandler
	WebhookHandler  *handler.WebhookHandler
	OAuthHandler    *handler.OAuthHandler
	PrayerHandler   *handler.PrayerHandler
	UserHandler     *handler.UserHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	donationHandler *handler.DonationHandler
	webhookHandler  *handler.WebhookHandler
	oauthHandler    *handler.OAuthHandler
	prayerHandler   *handler.PrayerHandler
	userHandler     *handler.UserHandler
	authMiddleware  *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		donationHandler: params.DonationHandler,
		webhookHandler:  params.WebhookHandler,
		oauthHandler:    params.OAuthHandler,
		prayerHandler:   params.PrayerHandler,
		userHandler:     params.UserHandler,
		authMiddleware:  params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Giving flow
	e.POST("/donate/process", r.donationHandler.Process)
	e.GET("/payment/callback", r.donationHandler.Callback)
	e.GET("/donate/qr", r.donationHandler.LinkQR)
	e.GET("/donations/recent", r.donationHandler.Recent)

	// Provider webhooks
	e.POST("/webhooks/fincra", r.webhookHandler.HandleFincra)

	// Prayer requests
	e.POST("/prayers", r.prayerHandler.Submit)

	// Federated sign-in
	e.GET("/login/:provider/start", r.oauthHandler.Start)
	e.GET("/oauth/:provider/callback", r.oauthHandler.Callback)

	// Local accounts and sessions
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.userHandler.Register)
		authGroup.POST("/login", r.userHandler.Login)
		authGroup.POST("/refresh", r.userHandler.Refresh)
		authGroup.POST("/logout", r.userHandler.Logout)
	}

	// Administrative endpoints
	adminGroup := e.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)
	adminGroup.Use(r.authMiddleware.RequireAdmin)
	{
		adminGroup.GET("/donations", r.donationHandler.AdminRecent)
	}
}
