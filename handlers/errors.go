package handlers

import (
	"errors"
	"lessonbook_app_go/services"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Error codes returned in the "error" field of every error body
const (
	CodeValidationFailed = "validation_failed"
	CodeSlotUnavailable  = "slot_unavailable"
	CodeConflict         = "conflict"
	CodeNotFound         = "not_found"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeRateLimited      = "rate_limited"
	CodeBadRequest       = "bad_request"
	CodeUnexpected       = "unexpected_error"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func apiError(status int, code, message, field string) *echo.HTTPError {
	return echo.NewHTTPError(status, ErrorBody{Error: code, Message: message, Field: field})
}

func badRequest(message string) *echo.HTTPError {
	return apiError(http.StatusBadRequest, CodeBadRequest, message, "")
}

func invalidField(field, message string) *echo.HTTPError {
	return apiError(http.StatusBadRequest, CodeValidationFailed, message, field)
}

// serviceError maps a services error onto the HTTP error surface
func serviceError(err error) error {
	var validation *services.ValidationError
	var conflict *services.ConflictError
	var notFound *services.NotFoundError

	switch {
	case errors.As(err, &validation):
		return invalidField(validation.Field, validation.Message)
	case errors.As(err, &conflict):
		code := CodeConflict
		if conflict.Resource == "slot" {
			code = CodeSlotUnavailable
		}
		return apiError(http.StatusConflict, code, conflict.Message, "")
	case errors.As(err, &notFound):
		return apiError(http.StatusNotFound, CodeNotFound, notFound.Error(), "")
	case errors.Is(err, services.ErrUnauthorized):
		return apiError(http.StatusUnauthorized, CodeUnauthorized, "Invalid credentials", "")
	}

	zap.L().Error("unexpected error", zap.Error(err))
	return apiError(http.StatusInternalServerError, CodeUnexpected, "Something went wrong", "")
}

// codeForStatus picks an error code for errors raised outside the handlers
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooManyRequests:
		return CodeRateLimited
	}
	if status >= 500 {
		return CodeUnexpected
	}
	return http.StatusText(status)
}

// HTTPErrorHandler renders every error as an ErrorBody
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		he = serviceError(err).(*echo.HTTPError)
	}

	body, ok := he.Message.(ErrorBody)
	if !ok {
		message := http.StatusText(he.Code)
		if s, isString := he.Message.(string); isString {
			message = s
		}
		body = ErrorBody{Error: codeForStatus(he.Code), Message: message}
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(he.Code)
	} else {
		writeErr = c.JSON(he.Code, body)
	}
	if writeErr != nil {
		zap.L().Warn("failed to write error response", zap.Error(writeErr))
	}
}
