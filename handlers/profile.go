package handlers

import (
	"lessonbook_app_go/db"
	"lessonbook_app_go/models"
	"lessonbook_app_go/services"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// UpdateProfileHandler applies a partial update to the teacher's profile
func UpdateProfileHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}

	var req struct {
		Name            *string          `json:"name"`
		Phone           *string          `json:"phone"`
		Bio             *string          `json:"bio"`
		Theme           *string          `json:"theme"`
		Timezone        *string          `json:"timezone"`
		Currency        *string          `json:"currency"`
		HourlyRate      *decimal.Decimal `json:"hourly_rate"`
		ClearHourlyRate bool             `json:"clear_hourly_rate"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	update := services.ProfileUpdate{
		Name:       req.Name,
		Phone:      req.Phone,
		Bio:        req.Bio,
		Theme:      req.Theme,
		Timezone:   req.Timezone,
		Currency:   req.Currency,
		HourlyRate: req.HourlyRate,
		ClearRate:  req.ClearHourlyRate,
	}

	updated, err := services.UpdateTeacherProfile(db.DB, teacher.ID, update)
	if err != nil {
		return serviceError(err)
	}

	audit(c, models.AuditActionUpdate, "Teacher", updated.ID, "Profile updated", req)
	return c.JSON(http.StatusOK, updated)
}
