package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DASHBOARD_POLL_INTERVAL", "SMTP_PORT", "DB_LOG_SQL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 10*time.Second, cfg.DashboardPollInterval)
	assert.Equal(t, 30, cfg.DashboardLookbackDays)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.False(t, cfg.DBLogSQL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DASHBOARD_POLL_INTERVAL", "2s")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("DB_LOG_SQL", "true")
	t.Setenv("SMS_CONCURRENCY", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.DashboardPollInterval)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.DBLogSQL)
	assert.Equal(t, 4, cfg.SMSConcurrency)
}

func TestConfiguredChecks(t *testing.T) {
	cfg := &Config{EmailFrom: "orders@example.com"}
	assert.False(t, cfg.EmailConfigured())
	cfg.EmailAPIKey = "re_123"
	assert.True(t, cfg.EmailConfigured())

	assert.False(t, cfg.SMSConfigured())
	cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioMessagingServiceSID = "AC1", "tok", "MG1"
	assert.True(t, cfg.SMSConfigured())
}
