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

// ListBookingRequestsHandler returns the request inbox, optionally by ?status
func ListBookingRequestsHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}

	status := models.PaymentStatus(c.QueryParam("status"))
	switch status {
	case "", models.StatusRequest, models.StatusQuoteSent, models.StatusPaid:
	default:
		return invalidField("status", fmt.Sprintf("%q is not a valid request status", status))
	}

	requests, err := services.ListBookingRequests(db.DB, teacher.ID, status)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, requests)
}

// GetBookingRequestHandler returns one inbox item
func GetBookingRequestHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	request, err := services.GetBookingRequest(db.DB, teacher.ID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, request)
}

// QuoteBookingRequestHandler attaches a quote and notifies the customer
func QuoteBookingRequestHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}

	var req struct {
		Description   string          `json:"description" validate:"required"`
		Amount        decimal.Decimal `json:"amount"`
		DurationHours decimal.Decimal `json:"duration_hours"`
		Notes         string          `json:"notes"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	request, err := services.AttachQuote(c.Request().Context(), db.DB, teacher.ID, c.Param("id"), services.QuoteInput{
		Description:   req.Description,
		Amount:        req.Amount,
		DurationHours: req.DurationHours,
		Notes:         req.Notes,
	}, services.DefaultClock.Now())
	if err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionUpdate, "BookingRequest", request.ID, "Quote sent", req)
	return c.JSON(http.StatusOK, request)
}

// MarkBookingRequestPaidHandler records payment of a quoted request
func MarkBookingRequestPaidHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	request, err := services.MarkRequestPaid(db.DB, teacher.ID, c.Param("id"), services.DefaultClock.Now())
	if err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionUpdate, "BookingRequest", request.ID, "Request marked paid", nil)
	return c.JSON(http.StatusOK, request)
}

// DeleteBookingRequestHandler removes an inbox item
func DeleteBookingRequestHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := services.DeleteBookingRequest(db.DB, teacher.ID, id); err != nil {
		return serviceError(err)
	}
	audit(c, models.AuditActionDelete, "BookingRequest", id, "Request deleted", nil)
	return c.NoContent(http.StatusNoContent)
}
