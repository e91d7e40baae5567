package handlers

import (
	"lessonbook_app_go/db"
	"lessonbook_app_go/middleware"
	"lessonbook_app_go/models"
	"lessonbook_app_go/services"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// currentTeacher returns the authenticated teacher or a 401
func currentTeacher(c echo.Context) (*models.Teacher, error) {
	teacher := middleware.GetCurrentTeacher(c)
	if teacher == nil {
		return nil, apiError(http.StatusUnauthorized, CodeUnauthorized, "Not authenticated", "")
	}
	return teacher, nil
}

// tenant returns the teacher a public request addresses
func tenant(c echo.Context) (*models.Teacher, error) {
	teacher := middleware.GetTenant(c)
	if teacher == nil {
		return nil, apiError(http.StatusNotFound, CodeNotFound, "Booking page not found", "")
	}
	return teacher, nil
}

// parseDate reads a required YYYY-MM-DD value
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, invalidField(field, "is required")
	}
	d, err := services.ParseDate(value)
	if err != nil {
		return time.Time{}, invalidField(field, err.Error())
	}
	return d, nil
}

// parseOptionalDate reads a YYYY-MM-DD value that may be absent
func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func queryInt(c echo.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.QueryParam(name)); err == nil {
		return v
	}
	return fallback
}

func audit(c echo.Context, action models.AuditAction, resourceType, resourceID, description string, values interface{}) {
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), action, resourceType, resourceID, description, values)
}
