package handlers

import (
	"encoding/json"
	"io"
	"lessonbook_app_go/db"
	"lessonbook_app_go/services"
	"net/http"

	"github.com/labstack/echo/v4"
)

// maxWebhookBody bounds the payload read before the signature is checked
const maxWebhookBody = 1 << 20

// BookingWebhookHandler applies a booking event pushed by an external
// scheduling system. The raw body must be signed with the teacher's secret.
func BookingWebhookHandler(c echo.Context) error {
	teacher, err := tenant(c)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return badRequest("Could not read request body")
	}
	if !services.VerifyWebhookSignature(teacher.WebhookSecret, body, c.Request().Header.Get(services.WebhookSignatureHeader)) {
		return apiError(http.StatusUnauthorized, CodeUnauthorized, "Invalid webhook signature", "")
	}

	var event services.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return badRequest("Invalid JSON payload")
	}

	result, err := services.ApplyWebhookEvent(db.DB, teacher.ID, event)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, result)
}
