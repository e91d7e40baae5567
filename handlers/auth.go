package handlers

import (
	"lessonbook_app_go/db"
	"lessonbook_app_go/middleware"
	"lessonbook_app_go/models"
	"lessonbook_app_go/services"
	"net/http"

	"github.com/labstack/echo/v4"
)

// LoginHandler exchanges an email and password for a session
func LoginHandler(c echo.Context) error {
	var req struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	teacher, err := services.AuthenticateTeacher(db.DB, req.Email, req.Password)
	if err != nil {
		return serviceError(err)
	}

	ipAddress := c.RealIP()
	userAgent := c.Request().UserAgent()
	session, err := services.CreateSession(db.DB, teacher.ID, ipAddress, userAgent)
	if err != nil {
		return serviceError(err)
	}
	middleware.SetSessionCookie(c, session)

	auditCtx := services.AuditContext{
		TeacherID: teacher.ID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
	}
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionLogin, "Teacher", teacher.ID, "Teacher logged in", nil)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"teacher":    teacher,
	})
}

// LogoutHandler ends the current session
func LogoutHandler(c echo.Context) error {
	token := middleware.SessionToken(c)
	if token != "" {
		if session := middleware.GetCurrentSession(c); session != nil {
			audit(c, models.AuditActionLogout, "Teacher", session.TeacherID, "Teacher logged out", nil)
		}
		if err := services.DeleteSession(db.DB, token); err != nil {
			return serviceError(err)
		}
	}
	middleware.ClearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// MeHandler returns the authenticated teacher
func MeHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, teacher)
}
