package commands

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"ghscraper/internal/components/restyutil"
	"ghscraper/internal/components/telemetry"
	"ghscraper/internal/scrapers/github"

	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	t.Setenv(envUserAgent, "")
	t.Setenv(envBaseUrl, "")

	settings := loadSettings(filepath.Join(t.TempDir(), "missing.json5"))

	require.Equal(t, github.DefaultBaseUrl, settings.BaseUrl)
	require.Equal(t, github.DefaultUserAgent, settings.UserAgent)
	require.Equal(t, 1, settings.Concurrency)
	require.False(t, settings.Telemetry.Enabled())

	opts, err := settings.clientOptions()
	require.NoError(t, err)
	require.Nil(t, opts.Dump)
	require.Equal(t, 15*time.Second, opts.Timeout)
	require.Equal(t, 3, opts.MaxRetries)
	require.Equal(t, time.Second, opts.Backoff)
	require.Zero(t, opts.RequestsPerSecond)
}

func TestLoadSettingsFileAndLocalOverride(t *testing.T) {
	t.Setenv(envUserAgent, "")
	t.Setenv(envBaseUrl, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// comments are allowed
		user_agent: "file-agent",
		request_timeout: 5,
		max_retries: 4,
		sleep_between_requests: 0,
	}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.local.json5"), []byte(`{
		max_retries: 6,
	}`), 0644))

	settings := loadSettings(path)
	opts, err := settings.clientOptions()
	require.NoError(t, err)

	require.Equal(t, "file-agent", opts.UserAgent)
	require.Equal(t, 5*time.Second, opts.Timeout)
	require.Equal(t, 6, opts.MaxRetries)
	require.Equal(t, time.Duration(0), opts.Backoff)
}

func TestLoadSettingsEnvOverrides(t *testing.T) {
	t.Setenv(envUserAgent, "env-agent")
	t.Setenv(envBaseUrl, "https://github.example.com")

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{user_agent: "file-agent"}`), 0644))

	settings := loadSettings(path)
	require.Equal(t, "env-agent", settings.UserAgent)
	require.Equal(t, "https://github.example.com", settings.BaseUrl)
}

func TestLoadSettingsInvalidFileFallsBack(t *testing.T) {
	t.Setenv(envUserAgent, "")
	t.Setenv(envBaseUrl, "")

	path := filepath.Join(t.TempDir(), "settings.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{user_agent: `), 0644))

	settings := loadSettings(path)
	require.Equal(t, github.DefaultUserAgent, settings.UserAgent)
}

func TestClientOptionsDumpDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pages")
	settings := Settings{DumpDir: dir}.withDefaults()

	opts, err := settings.clientOptions()
	require.NoError(t, err)
	require.NotNil(t, opts.Dump)
	require.DirExists(t, dir)
}

func TestClientOptionsRejectsNonEmptyDumpDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0600))

	_, err := Settings{DumpDir: dir}.withDefaults().clientOptions()
	require.ErrorIs(t, err, restyutil.ErrDirNotEmpty)
	require.FileExists(t, filepath.Join(dir, "notes.txt"))
}

var exampleEndpoint = regexp.MustCompile(`(grpc|http)_endpoint: "([^"]*)"`)

func TestExampleSettingsEndpointsAreUrls(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("..", "..", "..", "settings.example.json5"))
	require.NoError(t, err)

	matches := exampleEndpoint.FindAllStringSubmatch(string(content), -1)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		config := telemetry.Config{Otlp: telemetry.OtlpConfig{
			Traces: telemetry.OtlpConnConfig{GrpcEndpoint: m[2]},
		}}
		require.NoError(t, config.Validate(), m[0])
	}
}
