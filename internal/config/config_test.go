package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "routinecal.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "Asia/Dhaka", cfg.Timezone)
	assert.Equal(t, "08:00", cfg.ClassStart)
	assert.Equal(t, "09:30", cfg.ClassEnd)
	assert.Equal(t, 28, cfg.HorizonDays)
	assert.Nil(t, cfg.BasicAuth)

	// The file must now exist with restrictive permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestLoad_ReadsExistingYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routinecal.yaml")
	content := `
listen: "0.0.0.0:9000"
timezone: "UTC"
class_start: "09:00"
class_end: "10:30"
horizon_days: 7
basic_auth:
  username: "acadex"
  password: "secret"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "09:00", cfg.ClassStart)
	assert.Equal(t, "10:30", cfg.ClassEnd)
	assert.Equal(t, 7, cfg.HorizonDays)
	require.NotNil(t, cfg.BasicAuth)
	assert.Equal(t, "acadex", cfg.BasicAuth.Username)
	// Unset fields picked up defaults.
	assert.Equal(t, "./routinecal.db", cfg.DBPath)
	assert.Equal(t, "*/15 * * * *", cfg.RefreshCron)
}

func TestLoad_RejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routinecal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestNormalize_BadClassTimesFallBack(t *testing.T) {
	cfg := &Config{ClassStart: "25:00", ClassEnd: "soonish"}
	cfg.Normalize()

	assert.Equal(t, "08:00", cfg.ClassStart)
	assert.Equal(t, "09:30", cfg.ClassEnd)
}

func TestNormalize_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()

	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "Asia/Dhaka", cfg.Timezone)
	assert.Equal(t, "*/15 * * * *", cfg.RefreshCron)
	assert.Equal(t, 28, cfg.HorizonDays)
	assert.Equal(t, "./routinecal.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routinecal.yaml")

	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:9999"
	cfg.PreviewPath = "/tmp/preview.png"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
