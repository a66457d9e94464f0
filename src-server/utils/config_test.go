package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"schedly/src-server/model"
	"schedly/src-server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_PATH", "TIMEZONE", "METRIC_COLLECTION_INTERVAL", "SCHEDULE_CONFIG", "DISCORD_APP_TOKEN", "DISCORD_CLIENT_ID", "DISCORD_GUILD_ID"} {
		t.Setenv(key, "")
	}
	cfg, err := utils.NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.GetPort())
	assert.Equal(t, "sqlite.db", cfg.GetDatabasePath())
	assert.Equal(t, time.UTC, cfg.GetLocation())
	assert.Equal(t, 5*time.Second, cfg.GetMetricCollectionInterval())
	assert.False(t, cfg.DiscordEnabled())
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("METRIC_COLLECTION_INTERVAL", "1m")
	t.Setenv("DISCORD_APP_TOKEN", "token-value")
	t.Setenv("DISCORD_CLIENT_ID", "123")
	cfg, err := utils.NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.GetPort())
	assert.Equal(t, "Europe/Berlin", cfg.GetLocation().String())
	assert.Equal(t, time.Minute, cfg.GetMetricCollectionInterval())
	assert.True(t, cfg.DiscordEnabled())
	assert.Equal(t, "123", cfg.GetDiscordClientID())
}

func TestNewConfigRejects(t *testing.T) {
	t.Setenv("METRIC_COLLECTION_INTERVAL", "soon")
	t.Setenv("DISCORD_APP_TOKEN", "token-value")
	t.Setenv("DISCORD_CLIENT_ID", "")
	_, err := utils.NewConfig()
	require.Error(t, err)
	assert.ErrorContains(t, err, "METRIC_COLLECTION_INTERVAL")
	assert.ErrorContains(t, err, "DISCORD_CLIENT_ID")
}

func TestNewConfigUnknownTimezoneFallsBack(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")
	t.Setenv("DISCORD_APP_TOKEN", "")
	cfg, err := utils.NewConfig()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, cfg.GetLocation())
}

func TestLoadLimits(t *testing.T) {
	limits, err := utils.LoadLimits("")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLimits, limits)

	limits, err = utils.LoadLimits(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLimits, limits)

	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_occurrences: 10\nconflict_report_cap: 3\nsuggest_horizon: 48h\n"), 0o600))
	limits, err = utils.LoadLimits(path)
	require.NoError(t, err)
	assert.Equal(t, 10, limits.Expansion.MaxOccurrences)
	assert.Equal(t, model.DefaultLimits.Expansion.MaxSpanDays, limits.Expansion.MaxSpanDays)
	assert.Equal(t, 3, limits.ReportCap)
	assert.Equal(t, 48*time.Hour, limits.Slot.Horizon)
	assert.Equal(t, model.DefaultLimits.Slot.MaxIterations, limits.Slot.MaxIterations)

	require.NoError(t, os.WriteFile(path, []byte("suggest_horizon: later\n"), 0o600))
	_, err = utils.LoadLimits(path)
	assert.Error(t, err)
}

func TestCleanupString(t *testing.T) {
	assert.Equal(t, "Team sync", utils.CleanupString("  Team   sync. "))
	assert.Equal(t, "", utils.CleanupString("   "))
}
