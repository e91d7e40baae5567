package middleware

import (
	"lessonbook_app_go/services"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TurnstileTokenHeader carries the widget token on public submissions
const TurnstileTokenHeader = "X-Turnstile-Token"

// RequireTurnstile rejects requests whose Turnstile token does not verify.
// With an empty secret the check is disabled.
func RequireTurnstile(secretKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if secretKey == "" {
			return next
		}
		return func(c echo.Context) error {
			token := c.Request().Header.Get(TurnstileTokenHeader)
			ok, err := services.VerifyTurnstileToken(c.Request().Context(), token, secretKey, c.RealIP())
			if !ok {
				zap.L().Info("turnstile check failed",
					zap.String("path", c.Path()),
					zap.String("ip", c.RealIP()),
					zap.Error(err))
				return echo.NewHTTPError(http.StatusForbidden, "Human verification failed")
			}
			return next(c)
		}
	}
}
