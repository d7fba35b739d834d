package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. SIDETOC_PORT.
const EnvPrefix = "SIDETOC_"

// FileEnv names the variable pointing at an optional YAML config file.
const FileEnv = "SIDETOC_CONFIG"

type Config struct {
	Port string `koanf:"port"`

	// Content
	ContentDir string `koanf:"content_dir"`
	StaticDir  string `koanf:"static_dir"`

	// Widget
	ContentClass     string `koanf:"content_class"`
	MinHeadings      int    `koanf:"min_headings"`
	MobileBreakpoint int    `koanf:"mobile_breakpoint"`
	FocusBandTop     int    `koanf:"focus_band_top"`
	FocusBandBottom  int    `koanf:"focus_band_bottom"`

	// Rendering
	Prerender      bool          `koanf:"prerender"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	HighlightStyle string        `koanf:"highlight_style"`

	// Server
	LogLevel    string   `koanf:"log_level"`
	CORSOrigins []string `koanf:"cors_origins"`
	Watch       bool     `koanf:"watch"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Port:             "8090",
		ContentDir:       "content",
		StaticDir:        "static",
		ContentClass:     "prose",
		MinHeadings:      2,
		MobileBreakpoint: 768,
		FocusBandTop:     20,
		FocusBandBottom:  70,
		Prerender:        false,
		CacheTTL:         10 * time.Minute,
		HighlightStyle:   "github",
		LogLevel:         "info",
		CORSOrigins:      []string{"*"},
		Watch:            true,
	}
}

// Load reads defaults, then the YAML file named by SIDETOC_CONFIG if set,
// then SIDETOC_* environment overrides.
func Load() (Config, error) {
	return LoadFile(os.Getenv(FileEnv))
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file.
func LoadFile(path string) (Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	// SIDETOC_CACHE_TTL -> cache_ttl
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.clamp()
	return cfg, nil
}

// clamp replaces out-of-range numeric settings with their defaults.
func (c *Config) clamp() {
	d := Default()
	if c.Port == "" {
		c.Port = d.Port
	}
	if c.MinHeadings < 2 {
		c.MinHeadings = d.MinHeadings
	}
	if c.MobileBreakpoint <= 0 {
		c.MobileBreakpoint = d.MobileBreakpoint
	}
	if c.FocusBandTop < 0 || c.FocusBandBottom < 0 || c.FocusBandTop+c.FocusBandBottom >= 100 {
		c.FocusBandTop, c.FocusBandBottom = d.FocusBandTop, d.FocusBandBottom
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
}

func (c Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("content_dir is required")
	}
	info, err := os.Stat(c.ContentDir)
	if err != nil {
		return fmt.Errorf("content_dir %s: %w", c.ContentDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("content_dir %s is not a directory", c.ContentDir)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log_level setting to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", s)
	}
	return l, nil
}
