package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/maeshaii/backend-wny/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("REMINDER_CRON", "")
	t.Setenv("STATS_CACHE_TTL", "90s")
	t.Setenv("MAX_UPLOAD_MB", "2")
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("PUBLIC_BASE_URL", "https://wny.example/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.StatsCacheTTL)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "https://wny.example", cfg.PublicBaseURL)
	assert.Empty(t, cfg.Reminders.Cron)
}

func TestLoadConfig_ProductionRequiresJWTSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "a-real-secret", cfg.JWTSecret)
}

func TestLoadConfig_DevelopmentFallsBackToDefaultSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
}

func TestEventConfig_Brokers(t *testing.T) {
	c := EventConfig{KafkaBrokers: "k1:9092, k2:9092,,"}
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.GetKafkaBrokers())
}

func TestEventConfig_CreateEventPublisher_Mock(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	for _, c := range []EventConfig{{Enabled: false}, {Enabled: true, Publisher: "mock"}, {Enabled: true, Publisher: "carrier-pigeon"}} {
		p, err := c.CreateEventPublisher(logger)
		require.NoError(t, err)
		assert.IsType(t, &events.MockEventPublisher{}, p)
	}
}
