package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("RABBITMQ_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	require.Empty(t, cfg.Postgres.DSN)
	require.Equal(t, 15*time.Second, cfg.Watchdog.StallThreshold)
	require.Equal(t, time.Second, cfg.Watchdog.Interval)
	require.True(t, cfg.Watchdog.Armed)
	require.Equal(t, 3, cfg.Watchdog.FailureLimit)
	require.Equal(t, time.Hour, cfg.Watchdog.NewsInterval)
	require.Equal(t, 1.0, cfg.Watchdog.FallbackVolume)
	require.Equal(t, 256, cfg.Relay.Capacity)
	require.Equal(t, "reject-new", cfg.Relay.Overflow)
	require.Equal(t, []string{"python3", "bridge.py"}, cfg.Bridge.StartCommand)
	require.Equal(t, []string{"pkill", "-f", "bridge.py"}, cfg.Bridge.KillCommand)
	require.Equal(t, "mt5_config.json", cfg.Settings.Path)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("WATCHDOG_STALL_THRESHOLD", "30s")
	t.Setenv("WATCHDOG_ARMED", "false")
	t.Setenv("COMMAND_QUEUE_CAPACITY", "0")
	t.Setenv("COMMAND_QUEUE_OVERFLOW", "drop-oldest")
	t.Setenv("BRIDGE_START_COMMAND", "/opt/bridge/run.sh --demo")
	t.Setenv("VWAP_FALLBACK_VOLUME", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.HTTP.Port)
	require.Equal(t, 30*time.Second, cfg.Watchdog.StallThreshold)
	require.False(t, cfg.Watchdog.Armed)
	require.Equal(t, 0, cfg.Relay.Capacity)
	require.Equal(t, "drop-oldest", cfg.Relay.Overflow)
	require.Equal(t, []string{"/opt/bridge/run.sh", "--demo"}, cfg.Bridge.StartCommand)
	require.Equal(t, 0.5, cfg.Watchdog.FallbackVolume)
}

func TestLoad_InvalidValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HTTP_PORT", "eighty")
	t.Setenv("WATCHDOG_INTERVAL", "soon")
	t.Setenv("WATCHDOG_FAILURE_LIMIT", "0")
	t.Setenv("VWAP_FALLBACK_VOLUME", "0")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "HTTP_PORT")
	require.Contains(t, err.Error(), "WATCHDOG_INTERVAL")
	require.Contains(t, err.Error(), "WATCHDOG_FAILURE_LIMIT")
	require.Contains(t, err.Error(), "VWAP_FALLBACK_VOLUME")
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SETTINGS_PATH=/etc/console/mt5.json\n"), 0o600))
	t.Setenv("SETTINGS_PATH", "")
	require.NoError(t, os.Unsetenv("SETTINGS_PATH"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/etc/console/mt5.json", cfg.Settings.Path)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
