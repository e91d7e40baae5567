package handlers

import (
	"lessonbook_app_go/db"
	"lessonbook_app_go/models"
	"lessonbook_app_go/services"
	"net/http"

	"github.com/labstack/echo/v4"
)

type blockedDateRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason" validate:"max=200"`
}

func (r blockedDateRequest) toInput(prefix string) (services.BlockedRangeInput, error) {
	start, err := parseDate(prefix+"start_date", r.StartDate)
	if err != nil {
		return services.BlockedRangeInput{}, err
	}
	input := services.BlockedRangeInput{StartDate: start, Reason: r.Reason}
	if r.EndDate != "" {
		end, err := parseDate(prefix+"end_date", r.EndDate)
		if err != nil {
			return services.BlockedRangeInput{}, err
		}
		input.EndDate = end
	}
	return input, nil
}

// ListBlockedDatesHandler lists the teacher's blocked ranges
func ListBlockedDatesHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	ranges, err := services.ListBlockedRanges(db.DB, teacher.ID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, ranges)
}

// CreateBlockedDateHandler blocks a single day or an inclusive range
func CreateBlockedDateHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	var req blockedDateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	input, err := req.toInput("")
	if err != nil {
		return err
	}

	blocked, err := services.CreateBlockedRange(db.DB, teacher.ID, input)
	if err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionCreate, "BlockedRange", blocked.ID, "Dates blocked", blocked)
	return c.JSON(http.StatusCreated, blocked)
}

// DeleteBlockedDateHandler unblocks a range
func DeleteBlockedDateHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := services.DeleteBlockedRange(db.DB, teacher.ID, id); err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionDelete, "BlockedRange", id, "Dates unblocked", nil)
	return c.NoContent(http.StatusNoContent)
}
