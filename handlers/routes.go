package handlers

import (
	"lessonbook_app_go/config"
	"lessonbook_app_go/middleware"
	"lessonbook_app_go/services"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts every API route on e
func RegisterRoutes(e *echo.Echo, cfg *config.Config, limiters *middleware.Limiters) {
	e.GET("/healthz", HealthHandler)
	e.GET("/metrics", echo.WrapHandler(services.MetricsHandler()))

	api := e.Group("/api")
	api.POST("/auth/login", LoginHandler, limiters.Login.Middleware())

	// Public booking pages, addressed by path or by Host
	human := middleware.RequireTurnstile(cfg.TurnstileSecretKey)
	registerPublicRoutes(api.Group("/public/:subdomain", middleware.ResolveTenant(cfg.BaseDomain)), limiters, human)
	registerPublicRoutes(api.Group("/site", middleware.ResolveTenant(cfg.BaseDomain)), limiters, human)

	api.POST("/webhooks/:subdomain/bookings", BookingWebhookHandler,
		limiters.Webhook.Middleware(), middleware.ResolveTenant(cfg.BaseDomain))

	// Teacher dashboard
	protected := api.Group("", middleware.RequireAuth(), middleware.AuditContext())
	{
		protected.POST("/auth/logout", LogoutHandler)
		protected.GET("/me", MeHandler)
		protected.GET("/profile", MeHandler)
		protected.PUT("/profile", UpdateProfileHandler)

		protected.GET("/availability", ListWindowsHandler)
		protected.POST("/availability", CreateWindowHandler)
		protected.PUT("/availability/:id", UpdateWindowHandler)
		protected.DELETE("/availability/:id", DeactivateWindowHandler)
		protected.POST("/availability/:id/activate", ActivateWindowHandler)

		protected.GET("/blocked-dates", ListBlockedDatesHandler)
		protected.POST("/blocked-dates", CreateBlockedDateHandler)
		protected.DELETE("/blocked-dates/:id", DeleteBlockedDateHandler)

		protected.GET("/settings", GetSettingsHandler)
		protected.PUT("/settings", UpdateSettingsHandler)

		protected.GET("/reservations", ListReservationsHandler)
		protected.POST("/reservations", CreateManualReservationHandler)
		protected.GET("/reservations/export.xlsx", ExportReservationsHandler)
		protected.GET("/reservations/:id", GetReservationHandler)
		protected.GET("/reservations/:id/calendar.ics", ReservationCalendarHandler)
		protected.PATCH("/reservations/:id/status", UpdateReservationStatusHandler)
		protected.DELETE("/reservations/:id", DeleteReservationHandler)

		protected.GET("/requests", ListBookingRequestsHandler)
		protected.GET("/requests/:id", GetBookingRequestHandler)
		protected.POST("/requests/:id/quote", QuoteBookingRequestHandler)
		protected.POST("/requests/:id/paid", MarkBookingRequestPaidHandler)
		protected.DELETE("/requests/:id", DeleteBookingRequestHandler)

		protected.GET("/audit-logs", ListAuditLogsHandler)
	}
}

func registerPublicRoutes(g *echo.Group, limiters *middleware.Limiters, human echo.MiddlewareFunc) {
	read := limiters.PublicRead.Middleware()
	submit := limiters.PublicSubmit.Middleware()

	g.GET("", PublicProfileHandler, read)
	g.GET("/availability", PublicAvailabilityHandler, read)
	g.GET("/calendar", PublicCalendarHandler, read)
	g.GET("/windows/:id/options", PublicWindowOptionsHandler, read)
	g.POST("/select", PublicSelectHandler, read)
	g.POST("/reservations", PublicCreateReservationsHandler, submit, human)
	g.POST("/requests", PublicCreateRequestHandler, submit, human)
}
