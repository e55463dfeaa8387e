package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/regexrender/pkg/pattern"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds all configuration for regexrender
type Config struct {
	// Matcher and logging
	Engine    string `yaml:"engine" env:"REGEXRENDER_ENGINE"`
	LogLevel  string `yaml:"log_level" env:"REGEXRENDER_LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"REGEXRENDER_LOG_FORMAT"`

	// Output
	Color       string        `yaml:"color" env:"REGEXRENDER_COLOR"`
	BatchWindow time.Duration `yaml:"batch_window" env:"REGEXRENDER_BATCH_WINDOW"`
	MetricsAddr string        `yaml:"metrics_addr" env:"REGEXRENDER_METRICS_ADDR"`

	// Rendering rules, applied in order
	Rules []Rule `yaml:"rules"`
}

// Rule maps a pattern to a display style. When Rules is set, the selected
// group is evaluated again with the nested rules.
type Rule struct {
	Name    string   `yaml:"name"`
	Pattern string   `yaml:"pattern"`
	Style   []string `yaml:"style"`
	Group   int      `yaml:"group"`
	Prefix  string   `yaml:"prefix"`
	Suffix  string   `yaml:"suffix"`
	Enabled *bool    `yaml:"enabled"`
	Rules   []Rule   `yaml:"rules"`
}

// IsEnabled reports whether the rule is active. Rules are enabled unless
// explicitly turned off.
func (r Rule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Label returns the rule name, or its pattern when unnamed
func (r Rule) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Pattern
}

// MatcherEngine returns the configured matcher engine
func (c *Config) MatcherEngine() (pattern.Engine, error) {
	return pattern.ParseEngine(c.Engine)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine:      string(pattern.DefaultEngine),
		LogLevel:    "info",
		LogFormat:   "text",
		Color:       ColorAuto,
		BatchWindow: 50 * time.Millisecond,
		Rules:       DefaultRules(),
	}
}

// DefaultRules returns the built-in markdown-like rule set
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "ordered-list",
			Pattern: `/(?:^\d+\. .+$(?:\r?\n|$))+/gm`,
			Rules: []Rule{
				{
					Name:    "ordered-item",
					Pattern: `/^\d+\. .+$/gm`,
					Prefix:  "  ",
				},
			},
		},
		{
			Name:    "unordered-list",
			Pattern: `/(?:^- .+$(?:\r?\n|$))+/gm`,
			Rules: []Rule{
				{
					Name:    "unordered-item",
					Pattern: `/^- (.+)$/gm`,
					Group:   1,
					Prefix:  "  • ",
				},
			},
		},
		{
			Name:    "link",
			Pattern: `/\[([^\]]+)\]\(([^)]+)\)/g`,
			Style:   []string{"underline", "blue"},
		},
		{
			Name:    "bold",
			Pattern: `/\*(.*?)\*/g`,
			Style:   []string{"bold"},
		},
		{
			Name:    "italic",
			Pattern: `/_(.*?)_/g`,
			Style:   []string{"italic"},
		},
		{
			Name:    "strikethrough",
			Pattern: `/~~(.*?)~~/g`,
			Style:   []string{"strikethrough"},
		},
		{
			Name:    "underline",
			Pattern: `/__([^_]+)__/g`,
			Style:   []string{"underline"},
		},
	}
}

// Load loads configuration from the default file location and environment
func Load() (*Config, error) {
	return load(getConfigPath(), false)
}

// LoadFile loads configuration from path, which must exist, and environment
func LoadFile(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			if required || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// Override with environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := compileRules(cfg); err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if path := os.Getenv("REGEXRENDER_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "regexrender", "config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "regexrender", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (flag, env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if engine := os.Getenv("REGEXRENDER_ENGINE"); engine != "" {
		cfg.Engine = engine
	}

	if level := os.Getenv("REGEXRENDER_LOG_LEVEL"); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	if format := os.Getenv("REGEXRENDER_LOG_FORMAT"); format != "" {
		cfg.LogFormat = strings.ToLower(format)
	}

	if color := os.Getenv("REGEXRENDER_COLOR"); color != "" {
		switch strings.ToLower(color) {
		case "true", "1", "yes", ColorAlways:
			cfg.Color = ColorAlways
		case "false", "0", "no", ColorNever:
			cfg.Color = ColorNever
		case ColorAuto:
			cfg.Color = ColorAuto
		default:
			return fmt.Errorf("invalid REGEXRENDER_COLOR value: %q (use auto/always/never)", color)
		}
	}

	if window := os.Getenv("REGEXRENDER_BATCH_WINDOW"); window != "" {
		d, err := time.ParseDuration(window)
		if err != nil {
			return fmt.Errorf("invalid REGEXRENDER_BATCH_WINDOW: %w", err)
		}
		cfg.BatchWindow = d
	}

	if addr := os.Getenv("REGEXRENDER_METRICS_ADDR"); addr != "" {
		cfg.MetricsAddr = addr
	}

	return nil
}

// compileRules checks that every enabled rule compiles with the configured engine
func compileRules(cfg *Config) error {
	engine, err := cfg.MatcherEngine()
	if err != nil {
		return err
	}
	return compileRuleSet(cfg.Rules, engine, "")
}

func compileRuleSet(rules []Rule, engine pattern.Engine, parent string) error {
	for _, rule := range rules {
		if !rule.IsEnabled() {
			continue
		}
		path := rule.Label()
		if parent != "" {
			path = parent + "/" + path
		}
		if rule.Pattern == "" {
			return fmt.Errorf("rule %q has no pattern", path)
		}
		_, m, err := pattern.CompileString(rule.Pattern, engine)
		if err != nil {
			return fmt.Errorf("rule %q: %w", path, err)
		}
		if rule.Group < 0 || rule.Group > m.NumSubexp() {
			return fmt.Errorf("rule %q: group %d out of range (pattern has %d)", path, rule.Group, m.NumSubexp())
		}
		if err := compileRuleSet(rule.Rules, engine, path); err != nil {
			return err
		}
	}
	return nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be one of auto, always, never (got %q)", cfg.Color)
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json (got %q)", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", cfg.LogLevel)
	}

	if cfg.BatchWindow < 0 {
		return fmt.Errorf("batch_window must be non-negative")
	}

	return nil
}
