package middleware

import (
	"lessonbook_app_go/models"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestAuditContext(t *testing.T) {
	e := echo.New()

	t.Run("FullContext", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "test-agent")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyTeacher, &models.Teacher{ID: "teacher-123"})
		rec.Header().Set(echo.HeaderXRequestID, "req-42")

		handler := AuditContext()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, handler(c))

		auditCtx := GetAuditContext(c)
		assert.Equal(t, "teacher-123", auditCtx.TeacherID)
		assert.Equal(t, "test-agent", auditCtx.UserAgent)
		assert.Equal(t, "req-42", auditCtx.RequestID)
		assert.NotEmpty(t, auditCtx.IPAddress)
	})

	t.Run("NoAuth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := AuditContext()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		req.Header.Set(echo.HeaderXRequestID, "from-client")
		assert.NoError(t, handler(c))
		assert.Empty(t, GetAuditContext(c).TeacherID)
		assert.Equal(t, "from-client", GetAuditContext(c).RequestID)
	})

	t.Run("MissingContext", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		assert.Equal(t, "", GetAuditContext(c).TeacherID)
	})
}
