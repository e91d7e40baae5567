package handlers

import (
	"fmt"
	"lessonbook_app_go/db"
	"lessonbook_app_go/models"
	"lessonbook_app_go/services"
	"net/http"

	"github.com/labstack/echo/v4"
)

type settingsResponse struct {
	Settings     *models.BookingSettings `json:"settings"`
	BlockedDates []models.BlockedRange   `json:"blocked_dates"`
	FormFields   []models.FormFieldSpec  `json:"form_fields"`
}

func loadSettingsResponse(teacherID string) (*settingsResponse, error) {
	settings, err := services.GetBookingSettings(db.DB, teacherID)
	if err != nil {
		return nil, err
	}
	blocked, err := services.ListBlockedRanges(db.DB, teacherID)
	if err != nil {
		return nil, err
	}
	if blocked == nil {
		blocked = []models.BlockedRange{}
	}
	return &settingsResponse{
		Settings:     settings,
		BlockedDates: blocked,
		FormFields:   models.FormFieldRegistry(),
	}, nil
}

// GetSettingsHandler returns the booking policy, the blocked dates and the
// registry of form fields the toggles refer to
func GetSettingsHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	resp, err := loadSettingsResponse(teacher.ID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateSettingsHandler saves the whole settings record. When blocked_dates
// is present the teacher's blocked ranges are replaced atomically with it.
func UpdateSettingsHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}

	var req struct {
		models.BookingSettings
		BlockedDates *[]blockedDateRequest `json:"blocked_dates"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var blocked []services.BlockedRangeInput
	if req.BlockedDates != nil {
		blocked = make([]services.BlockedRangeInput, 0, len(*req.BlockedDates))
		for i, b := range *req.BlockedDates {
			input, err := b.toInput(fmt.Sprintf("blocked_dates[%d].", i))
			if err != nil {
				return err
			}
			blocked = append(blocked, input)
		}
	}

	saved, err := services.SaveBookingSettings(db.DB, teacher.ID, req.BookingSettings, blocked)
	if err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionUpdate, "BookingSettings", saved.ID, "Booking settings updated", saved)

	resp, err := loadSettingsResponse(teacher.ID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, resp)
}
