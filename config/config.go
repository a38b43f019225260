// config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`

	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeStr string `yaml:"conn_max_lifetime"`
	ConnMaxLifetime    time.Duration
}

// MatrixConfig points at the control endpoint of the video matrix
// switcher. The vendor protocol itself lives behind that endpoint; this
// backend only speaks plain HTTP to it.
type MatrixConfig struct {
	ControlURL string        `yaml:"control_url"`
	TimeoutStr string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

// GuideFeedConfig describes one schedule provider: where its CSV lives,
// where its HTML page with the "Published ..." stamp lives, and which
// container to scrape the stamp from.
type GuideFeedConfig struct {
	CsvURL        string `yaml:"csv_url"`
	PageURL       string `yaml:"page_url"`
	StampSelector string `yaml:"stamp_selector"`
	LocalPath     string `yaml:"local_path"`
}

type GuideFeedsConfig struct {
	National GuideFeedConfig `yaml:"national"`
	Regional GuideFeedConfig `yaml:"regional"`
}

// OverridesConfig holds the four duration knobs of the override duration
// calculator. The no-event fallback and the live-unknown default are
// intentionally separate values; do not collapse them.
type OverridesConfig struct {
	LiveEventBufferStr  string `yaml:"live_event_buffer"`
	MaxOverrideStr      string `yaml:"max_override"`
	LiveEventDefaultStr string `yaml:"live_event_default"`
	NoEventFallbackStr  string `yaml:"no_event_fallback"`

	// Parsed durations.
	LiveEventBuffer  time.Duration
	MaxOverride      time.Duration
	LiveEventDefault time.Duration
	NoEventFallback  time.Duration
}

type SweepConfig struct {
	CheckIntervalStr string `yaml:"check_interval"`
	CheckInterval    time.Duration
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Matrix     MatrixConfig     `yaml:"matrix"`
	GuideFeeds GuideFeedsConfig `yaml:"guide_feeds"`
	Overrides  OverridesConfig  `yaml:"overrides"`
	Sweep      SweepConfig      `yaml:"sweep"`
}

var AppConfig Config

// Defaults for the override knobs when the yaml leaves them blank.
const (
	defaultLiveEventBuffer  = 15 * time.Minute
	defaultMaxOverride      = 6 * time.Hour
	defaultLiveEventDefault = 3 * time.Hour
	defaultNoEventFallback  = 4 * time.Hour
	defaultSweepInterval    = 1 * time.Minute
	defaultMatrixTimeout    = 10 * time.Second

	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
)

// LoadConfig reads the yaml config, parses duration strings, and applies
// environment overrides for secrets.
func LoadConfig(configPath string) error {
	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	AppConfig = Config{} // Reset so a reload never inherits stale fields.
	err = yaml.Unmarshal(file, &AppConfig)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := parseDurations(&AppConfig); err != nil {
		return err
	}

	applyEnvOverrides(&AppConfig)

	// Make sure the feed download directories exist up front.
	for _, p := range []string{AppConfig.GuideFeeds.National.LocalPath, AppConfig.GuideFeeds.Regional.LocalPath} {
		if p != "" {
			if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
				return fmt.Errorf("failed to create directory for guide feed download %s: %w", p, err)
			}
		}
	}

	return nil
}

func parseDurations(cfg *Config) error {
	var err error

	parse := func(s string, def time.Duration, name string) (time.Duration, error) {
		if s == "" {
			return def, nil
		}
		d, perr := time.ParseDuration(s)
		if perr != nil {
			return 0, fmt.Errorf("failed to parse %s duration %q: %w", name, s, perr)
		}
		return d, nil
	}

	if cfg.Overrides.LiveEventBuffer, err = parse(cfg.Overrides.LiveEventBufferStr, defaultLiveEventBuffer, "overrides.live_event_buffer"); err != nil {
		return err
	}
	if cfg.Overrides.MaxOverride, err = parse(cfg.Overrides.MaxOverrideStr, defaultMaxOverride, "overrides.max_override"); err != nil {
		return err
	}
	if cfg.Overrides.LiveEventDefault, err = parse(cfg.Overrides.LiveEventDefaultStr, defaultLiveEventDefault, "overrides.live_event_default"); err != nil {
		return err
	}
	if cfg.Overrides.NoEventFallback, err = parse(cfg.Overrides.NoEventFallbackStr, defaultNoEventFallback, "overrides.no_event_fallback"); err != nil {
		return err
	}
	if cfg.Sweep.CheckInterval, err = parse(cfg.Sweep.CheckIntervalStr, defaultSweepInterval, "sweep.check_interval"); err != nil {
		return err
	}
	if cfg.Matrix.Timeout, err = parse(cfg.Matrix.TimeoutStr, defaultMatrixTimeout, "matrix.timeout"); err != nil {
		return err
	}
	if cfg.Database.ConnMaxLifetime, err = parse(cfg.Database.ConnMaxLifetimeStr, defaultConnMaxLifetime, "database.conn_max_lifetime"); err != nil {
		return err
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = defaultMaxIdleConns
	}

	// Manual override windows must end strictly after they are set, so
	// none of these knobs may be zero or negative.
	for name, d := range map[string]time.Duration{
		"overrides.live_event_buffer":  cfg.Overrides.LiveEventBuffer,
		"overrides.max_override":       cfg.Overrides.MaxOverride,
		"overrides.live_event_default": cfg.Overrides.LiveEventDefault,
		"overrides.no_event_fallback":  cfg.Overrides.NoEventFallback,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be a positive duration, got %s", name, d)
		}
	}

	return nil
}

// applyEnvOverrides lets deployments keep secrets out of the yaml file.
// godotenv (loaded in main) makes these work from a local .env too.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("MATRIX_CONTROL_URL"); v != "" {
		cfg.Matrix.ControlURL = v
	}
}
