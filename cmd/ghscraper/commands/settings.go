package commands

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"ghscraper/internal/components/configutil"
	"ghscraper/internal/components/restyutil"
	"ghscraper/internal/components/telemetry"
	"ghscraper/internal/scrapers/github"
)

// Settings is the shape of settings.json5.
type Settings struct {
	BaseUrl   string `json:"base_url"`
	UserAgent string `json:"user_agent"`
	// seconds
	RequestTimeout float64 `json:"request_timeout"`
	MaxRetries     int     `json:"max_retries"`
	// seconds, nil means the default, 0 disables backoff
	SleepBetweenRequests *float64 `json:"sleep_between_requests"`
	RequestsPerSecond    float64  `json:"requests_per_second"`
	CloudflareBypass     bool     `json:"cloudflare_bypass"`
	Concurrency          int      `json:"concurrency"`
	// directory receiving every fetched page, empty disables dumping
	DumpDir string `json:"dump_dir"`

	Telemetry telemetry.Config `json:"telemetry"`
}

const (
	envUserAgent = "GHSCRAPER_USER_AGENT"
	envBaseUrl   = "GHSCRAPER_BASE_URL"
)

// loadSettings never fails, a missing or broken settings file falls back to
// the defaults.
func loadSettings(path string) Settings {
	settings, err := configutil.ReadConfig[Settings](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("settings file not found, using defaults", "path", path)
		settings = Settings{}
	} else if err != nil {
		slog.Warn("failed to load settings file, using defaults", "path", path, "err", err)
		settings = Settings{}
	}

	configutil.OverrideFromEnv(&settings.UserAgent, envUserAgent)
	configutil.OverrideFromEnv(&settings.BaseUrl, envBaseUrl)

	return settings.withDefaults()
}

func (s Settings) withDefaults() Settings {
	if s.BaseUrl == "" {
		s.BaseUrl = github.DefaultBaseUrl
	}
	if s.UserAgent == "" {
		s.UserAgent = github.DefaultUserAgent
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = 15
	}
	if s.MaxRetries <= 0 {
		s.MaxRetries = 3
	}
	if s.SleepBetweenRequests == nil {
		sleep := 1.0
		s.SleepBetweenRequests = &sleep
	}
	if s.Concurrency <= 0 {
		s.Concurrency = 1
	}
	return s
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (s Settings) clientOptions() (github.ClientOptions, error) {
	var dump restyutil.Output
	if s.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(s.DumpDir)
		if err != nil {
			return github.ClientOptions{}, err
		}
		dump = output
	}

	return github.ClientOptions{
		BaseUrl:           s.BaseUrl,
		UserAgent:         s.UserAgent,
		Timeout:           seconds(s.RequestTimeout),
		MaxRetries:        s.MaxRetries,
		Backoff:           seconds(*s.SleepBetweenRequests),
		RequestsPerSecond: s.RequestsPerSecond,
		CloudflareBypass:  s.CloudflareBypass,
		Dump:              dump,
	}, nil
}
