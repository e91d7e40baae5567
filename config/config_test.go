package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvInt(t *testing.T) {
	t.Setenv("LB_TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("LB_TEST_INT", 7))

	t.Setenv("LB_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("LB_TEST_INT", 7))

	assert.Equal(t, 3, getEnvInt("LB_TEST_INT_UNSET", 3))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("LB_TEST_BOOL", "yes")
	assert.True(t, getEnvBool("LB_TEST_BOOL", false))

	t.Setenv("LB_TEST_BOOL", "off")
	assert.False(t, getEnvBool("LB_TEST_BOOL", true))

	t.Setenv("LB_TEST_BOOL", "maybe")
	assert.True(t, getEnvBool("LB_TEST_BOOL", true))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("INVOICE_CURRENCY", "EUR")
	for _, key := range []string{"SERVER_PORT", "INVOICE_DUE_DAYS", "REMINDER_SCHEDULE", "EMAIL_TEST_MODE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "eur", cfg.InvoiceCurrency)
	assert.Equal(t, 7, cfg.InvoiceDueDays)
	assert.Equal(t, "@hourly", cfg.ReminderSchedule)
	assert.True(t, cfg.EmailTestMode)
	assert.NotEmpty(t, cfg.SessionSecret, "development should get a generated secret")
}
