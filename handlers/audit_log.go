package handlers

import (
	"lessonbook_app_go/db"
	"lessonbook_app_go/services"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListAuditLogsHandler pages through the teacher's audit trail
func ListAuditLogsHandler(c echo.Context) error {
	teacher, err := currentTeacher(c)
	if err != nil {
		return err
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 50)
	logs, total, err := services.GetTeacherAuditLogs(db.DB, teacher.ID, c.QueryParam("resource_type"), page, pageSize)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  page,
	})
}
