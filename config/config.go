package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds persistent client settings stored at <profileDir>/config.toml.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	UI        UIConfig        `toml:"ui"`
	Export    ExportConfig    `toml:"export"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

type ServerConfig struct {
	URL string `toml:"url"`
	// TimeoutSecs bounds request/response calls. Streamed replies are
	// never timed out.
	TimeoutSecs int  `toml:"timeout_secs"`
	Streaming   bool `toml:"streaming"`
	// RefreshSecs is the session list auto-refresh period; 0 disables it.
	RefreshSecs int `toml:"refresh_secs"`
}

type UIConfig struct {
	Theme          string `toml:"theme"`
	WordWrap       bool   `toml:"word_wrap"`
	UserLabel      string `toml:"user_label"`
	AssistantLabel string `toml:"assistant_label"`
	ShowSidebar    bool   `toml:"show_sidebar"`
	ShowTokens     bool   `toml:"show_tokens"`
}

type ExportConfig struct {
	Dir string `toml:"dir"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

type TelemetryConfig struct {
	Enabled             bool `toml:"enabled"`
	MetricsIntervalSecs int  `toml:"metrics_interval_secs"`
}

const (
	filename = "config.toml"

	DefaultURL = "http://localhost:8000/api"

	EnvURL       = "HIVECHAT_URL"
	EnvExportDir = "HIVECHAT_EXPORT_DIR"
	EnvLogLevel  = "HIVECHAT_LOG_LEVEL"
	EnvStreaming = "HIVECHAT_STREAMING"
)

// Path returns the config file location inside profileDir.
func Path(profileDir string) string {
	return filepath.Join(profileDir, filename)
}

// ProfileDir returns ~/.hivechat, or ~/.hivechat/profiles/<profile> for a
// named profile.
func ProfileDir(profile string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	base := filepath.Join(home, ".hivechat")
	if profile == "" || profile == "default" {
		return base, nil
	}
	return filepath.Join(base, "profiles", profile), nil
}

// Load reads <profileDir>/config.toml and returns the parsed Config.
// If the file is absent or unreadable, a default Config is returned.
func Load(profileDir string) Config {
	cfg, err := LoadFile(Path(profileDir))
	if err != nil {
		return Defaults()
	}
	return cfg
}

// LoadFile decodes path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Defaults(), fmt.Errorf("decode %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// Resolve is the full startup load: .env files, the config file, then
// environment overrides.
func Resolve(profileDir string) Config {
	LoadEnv(profileDir)
	cfg := Load(profileDir)
	cfg.ApplyEnvOverrides()
	return cfg
}

// LoadEnv loads <profileDir>/.env and ./.env into the process environment.
// Variables already set are left alone, and missing files are ignored.
func LoadEnv(profileDir string) {
	for _, p := range []string{filepath.Join(profileDir, ".env"), ".env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// ApplyEnvOverrides lets the environment win over the file:
//   - HIVECHAT_URL: server.url
//   - HIVECHAT_EXPORT_DIR: export.dir
//   - HIVECHAT_LOG_LEVEL: logging.level
//   - HIVECHAT_STREAMING: server.streaming
func (c *Config) ApplyEnvOverrides() {
	if url := os.Getenv(EnvURL); url != "" {
		c.Server.URL = url
	}
	if dir := os.Getenv(EnvExportDir); dir != "" {
		c.Export.Dir = dir
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
	if v := os.Getenv(EnvStreaming); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Server.Streaming = b
		}
	}
	c.normalize()
}

// Save writes cfg to <profileDir>/config.toml, creating the directory if
// needed.
func Save(profileDir string, cfg Config) error {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	file, err := os.OpenFile(Path(profileDir), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# hivechat configuration")
	fmt.Fprintln(file, "")
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func Defaults() Config {
	return Config{
		Server: ServerConfig{
			URL:         DefaultURL,
			TimeoutSecs: 300,
			Streaming:   true,
			RefreshSecs: 30,
		},
		UI: UIConfig{
			Theme:       "dark",
			WordWrap:    true,
			ShowSidebar: true,
			ShowTokens:  true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			File:       "hivechat.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Telemetry: TelemetryConfig{
			MetricsIntervalSecs: 10,
		},
	}
}

func (c *Config) normalize() {
	c.Server.URL = strings.TrimRight(strings.TrimSpace(c.Server.URL), "/")
	if c.Server.URL == "" {
		c.Server.URL = DefaultURL
	}
	if c.Server.TimeoutSecs < 0 {
		c.Server.TimeoutSecs = 0
	}
	if c.Server.RefreshSecs < 0 {
		c.Server.RefreshSecs = 0
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

// Timeout is the request/response timeout; zero means none.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// RefreshInterval is the auto-refresh period; zero disables it.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.Server.RefreshSecs) * time.Second
}

// ExportDir resolves export.dir, defaulting to the working directory.
func (c Config) ExportDir() string {
	if c.Export.Dir == "" {
		return "."
	}
	if strings.HasPrefix(c.Export.Dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, c.Export.Dir[2:])
		}
	}
	return c.Export.Dir
}
