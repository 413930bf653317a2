package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("chants-url", "", "")
	flags.String("output", "", "")
	flags.String("log-level", "", "")
	flags.Bool("playlist", false, "")
	flags.Bool("no-progress-ui", false, "")
	flags.Bool("no-sanitize", false, "")
	flags.Bool("no-clear", false, "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestLoad_MissingFile(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "missing.json"), nil)
	require.NoError(t, err)
	assert.Equal(t, "downloads", settings.DownloadsPath)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "downloads_path: /music/valaam\npage_timeout: 3s\nlog_level: debug\ncreate_playlist: true\nplaylist_format: pls\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("VALAAM_LOG_LEVEL", "warn")

	settings, err := Load(path, testFlags(t, "--output", "/tmp/out", "--no-progress-ui"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out", settings.DownloadsPath, "flag wins over file")
	assert.Equal(t, "warn", settings.LogLevel, "env wins over file")
	assert.Equal(t, 3*time.Second, settings.PageTimeout)
	assert.True(t, settings.CreatePlaylist)
	assert.Equal(t, "pls", settings.PlaylistFormat)
	assert.False(t, settings.ProgressUI)
	assert.True(t, settings.SanitizeNames, "untouched negated flag keeps default")
}

func TestLoad_InvalidChantsURL(t *testing.T) {
	_, err := Load("", testFlags(t, "--chants-url", "not a url"))
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	settings := DefaultSettings()
	settings.DownloadsPath = "/srv/chants"
	settings.PageTimeout = 15 * time.Second
	settings.SanitizeNames = false
	require.NoError(t, settings.Save(path))

	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestBaseURL(t *testing.T) {
	settings := DefaultSettings()
	base, err := settings.BaseURL()
	require.NoError(t, err)
	assert.Equal(t, "https://valaam.ru", base.String())

	settings.ChantsURL = "/chants/"
	_, err = settings.BaseURL()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger("debug", &buf)
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	logger = NewLogger("loud", &buf)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")
}
