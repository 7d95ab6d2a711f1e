package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg := Load(t.TempDir())
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, DefaultURL, cfg.Server.URL)
	assert.True(t, cfg.Server.Streaming)
	assert.Equal(t, 300*time.Second, cfg.Timeout())
}

func TestLoad_BadFileGivesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("[server\nurl = "), 0o644))

	assert.Equal(t, Defaults(), Load(dir))
	_, err := LoadFile(Path(dir))
	assert.Error(t, err)
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	dir := t.TempDir()
	data := `
[server]
url = "https://chat.example.com/api/"
streaming = false

[ui]
theme = "light"
`
	require.NoError(t, os.WriteFile(Path(dir), []byte(data), 0o644))

	cfg := Load(dir)
	assert.Equal(t, "https://chat.example.com/api", cfg.Server.URL)
	assert.False(t, cfg.Server.Streaming)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, 300, cfg.Server.TimeoutSecs)
	assert.Equal(t, "hivechat.log", cfg.Logging.File)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profiles", "work")
	cfg := Defaults()
	cfg.Server.URL = "http://10.0.0.5:8000/api"
	cfg.UI.UserLabel = "Me"
	cfg.Export.Dir = "/tmp/exports"

	require.NoError(t, Save(dir, cfg))
	assert.Equal(t, cfg, Load(dir))
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvURL, "http://override:9000/api/")
	t.Setenv(EnvExportDir, "/srv/exports")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvStreaming, "false")

	cfg := Defaults()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "http://override:9000/api", cfg.Server.URL)
	assert.Equal(t, "/srv/exports", cfg.ExportDir())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Server.Streaming)
}

func TestResolve_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvURL+"=http://from-dotenv/api\n"), 0o644))
	t.Setenv(EnvURL, "")
	os.Unsetenv(EnvURL)

	cfg := Resolve(dir)
	assert.Equal(t, "http://from-dotenv/api", cfg.Server.URL)
}

func TestProfileDir(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	dir, err := ProfileDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".hivechat"), dir)

	dir, err = ProfileDir("work")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".hivechat", "profiles", "work"), dir)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, Defaults()))

	log := logrus.New()
	log.SetOutput(io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	require.NoError(t, Watch(ctx, dir, log, func(c Config) { changes <- c }))

	cfg := Defaults()
	cfg.UI.Theme = "light"
	cfg.UI.WordWrap = false
	require.NoError(t, Save(dir, cfg))

	select {
	case got := <-changes:
		assert.Equal(t, "light", got.UI.Theme)
		assert.False(t, got.UI.WordWrap)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}
