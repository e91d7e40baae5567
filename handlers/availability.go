package handlers

import (
	"lessonbook_app_go/db"
	"lessonbook_app_go/models"
	"lessonbook_app_go/services"
	"net/http"

	"github.com/labstack/echo/v4"
)

type windowRequest struct {
	Title       string `json:"title" validate:"max=100"`
	DayOfWeek   *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	ActiveFrom  string `json:"active_from" validate:"required"`
	ActiveUntil string `json:"active_until"`
	IsActive    *bool  `json:"is_active"`
}

func (r windowRequest) toInput() (services.WindowInput, error) {
	from, err := parseDate("active_from", r.ActiveFrom)
	if err != nil {
		return services.WindowInput{}, err
	}
	until, err := parseOptionalDate("active_until", r.ActiveUntil)
	if err != nil {
		return services.WindowInput{}, err
	}
	input := services.WindowInput{
		Title:       r.Title,
		DayOfWeek:   *r.DayOfWeek,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		ActiveFrom:  from,
		ActiveUntil: until,
		IsActive:    true,
	}
	if r.IsActive != nil {
		input.IsActive = *r.IsActive
	}
	return input, nil
}

// ListWindowsHandler lists the teacher's availability windows.
// Inactive windows are included with ?include_inactive=true.
func ListWindowsHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	windows, err := services.ListWindows(db.DB, teacher.ID, c.QueryParam("include_inactive") == "true")
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, windows)
}

// CreateWindowHandler adds a recurring weekly window
func CreateWindowHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	var req windowRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	input, err := req.toInput()
	if err != nil {
		return err
	}

	window, err := services.CreateWindow(db.DB, teacher.ID, input)
	if err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionCreate, "AvailabilityWindow", window.ID, "Window created for "+window.DayName(), window)
	return c.JSON(http.StatusCreated, window)
}

// UpdateWindowHandler replaces a window's fields
func UpdateWindowHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	var req windowRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	input, err := req.toInput()
	if err != nil {
		return err
	}

	window, err := services.UpdateWindow(db.DB, teacher.ID, c.Param("id"), input)
	if err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionUpdate, "AvailabilityWindow", window.ID, "Window updated", window)
	return c.JSON(http.StatusOK, window)
}

// DeactivateWindowHandler handles DELETE; windows are deactivated, never removed
func DeactivateWindowHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	window, err := services.DeactivateWindow(db.DB, teacher.ID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionDelete, "AvailabilityWindow", window.ID, "Window deactivated", nil)
	return c.JSON(http.StatusOK, window)
}

// ActivateWindowHandler re-publishes a deactivated window
func ActivateWindowHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	window, err := services.ActivateWindow(db.DB, teacher.ID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionUpdate, "AvailabilityWindow", window.ID, "Window activated", nil)
	return c.JSON(http.StatusOK, window)
}
