package handlers

import (
	"fmt"
	"lessonbook_app_go/db"
	"lessonbook_app_go/models"
	"lessonbook_app_go/services"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type customerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

func (r customerRequest) toInput() services.CustomerInput {
	return services.CustomerInput{Name: r.Name, Email: r.Email, Phone: r.Phone}
}

func reservationFilter(c echo.Context) (services.ReservationFilter, error) {
	var filter services.ReservationFilter
	from, err := parseOptionalDate("from", c.QueryParam("from"))
	if err != nil {
		return filter, err
	}
	to, err := parseOptionalDate("to", c.QueryParam("to"))
	if err != nil {
		return filter, err
	}
	filter.From = from
	filter.To = to

	if status := models.PaymentStatus(c.QueryParam("status")); status != "" {
		if !status.IsScheduledStatus() {
			return filter, invalidField("status", fmt.Sprintf("%q is not a valid reservation status", status))
		}
		filter.Status = status
	}
	return filter, nil
}

// ListReservationsHandler lists reservations, optionally filtered by
// ?from, ?to and ?status
func ListReservationsHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	filter, err := reservationFilter(c)
	if err != nil {
		return err
	}
	reservations, err := services.ListReservations(db.DB, teacher.ID, filter)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, reservations)
}

// ExportReservationsHandler downloads the filtered reservations as a spreadsheet
func ExportReservationsHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	filter, err := reservationFilter(c)
	if err != nil {
		return err
	}
	reservations, err := services.ListReservations(db.DB, teacher.ID, filter)
	if err != nil {
		return serviceError(err)
	}

	data, err := services.ExportReservationsXLSX(reservations, teacher.Currency)
	if err != nil {
		return serviceError(err)
	}
	filename := fmt.Sprintf("reservations-%s.xlsx", services.FormatDate(services.TodayIn(services.DefaultClock.Now(), teacher.Location())))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

// CreateManualReservationHandler records a booking the teacher took offline
func CreateManualReservationHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}

	var req struct {
		Customer  customerRequest  `json:"customer"`
		Date      string           `json:"date" validate:"required"`
		StartTime string           `json:"start_time" validate:"required"`
		EndTime   string           `json:"end_time" validate:"required"`
		Amount    *decimal.Decimal `json:"amount"`
		Status    string           `json:"status"`
		Notes     string           `json:"notes"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return err
	}

	reservation, err := services.CreateManualReservation(db.DB, teacher.ID, services.ManualReservationInput{
		Customer:  req.Customer.toInput(),
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Amount:    req.Amount,
		Status:    models.PaymentStatus(req.Status),
		Notes:     req.Notes,
	})
	if err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionCreate, "Reservation", reservation.ID, "Manual reservation for "+reservation.Customer.Name, reservation)
	return c.JSON(http.StatusCreated, reservation)
}

// GetReservationHandler returns one reservation
func GetReservationHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	reservation, err := services.GetReservation(db.DB, teacher.ID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, reservation)
}

// ReservationCalendarHandler downloads a reservation as an .ics event
func ReservationCalendarHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	reservation, err := services.GetReservation(db.DB, teacher.ID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	ics, err := services.ReservationICS(teacher, reservation, services.DefaultClock.Now())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "lesson-"+services.FormatDate(reservation.Date)+".ics"))
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", ics)
}

// UpdateReservationStatusHandler moves a reservation along its payment lifecycle
func UpdateReservationStatusHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}

	var req struct {
		Status string           `json:"status" validate:"required"`
		Amount *decimal.Decimal `json:"amount"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reservation, err := services.UpdateReservationStatus(db.DB, teacher.ID, c.Param("id"), models.PaymentStatus(req.Status), req.Amount)
	if err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionUpdate, "Reservation", reservation.ID, "Status changed to "+string(reservation.PaymentStatus), req)
	return c.JSON(http.StatusOK, reservation)
}

// DeleteReservationHandler removes a reservation and frees its slot
func DeleteReservationHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := services.DeleteReservation(db.DB, teacher.ID, id); err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionDelete, "Reservation", id, "Reservation deleted", nil)
	return c.NoContent(http.StatusNoContent)
}
