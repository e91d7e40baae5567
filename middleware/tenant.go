package middleware

import (
	"lessonbook_app_go/db"
	"lessonbook_app_go/models"
	"lessonbook_app_go/services"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ContextKeyTenant is the context key for the teacher a public page belongs to
const ContextKeyTenant = "tenant"

// SubdomainFromHost returns the label in front of baseDomain, or "" when the
// host is the base domain itself or unrelated to it.
func SubdomainFromHost(host, baseDomain string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	baseDomain = strings.ToLower(strings.TrimPrefix(baseDomain, "."))
	if baseDomain == "" || !strings.HasSuffix(host, "."+baseDomain) {
		return ""
	}
	sub := strings.TrimSuffix(host, "."+baseDomain)
	if sub == "" || strings.Contains(sub, ".") || sub == "www" {
		return ""
	}
	return sub
}

// ResolveTenant loads the teacher a public request is addressed to, from the
// :subdomain path parameter or else from the Host header.
func ResolveTenant(baseDomain string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sub := c.Param("subdomain")
			if sub == "" {
				sub = SubdomainFromHost(c.Request().Host, baseDomain)
			}
			if sub == "" {
				return echo.NewHTTPError(http.StatusNotFound, "Booking page not found")
			}

			teacher, err := services.GetTeacherBySubdomain(db.DB, sub)
			if err != nil {
				if services.IsNotFound(err) {
					return echo.NewHTTPError(http.StatusNotFound, "Booking page not found")
				}
				return err
			}
			c.Set(ContextKeyTenant, teacher)
			return next(c)
		}
	}
}

// GetTenant retrieves the resolved public tenant
func GetTenant(c echo.Context) *models.Teacher {
	teacher, ok := c.Get(ContextKeyTenant).(*models.Teacher)
	if !ok {
		return nil
	}
	return teacher
}
