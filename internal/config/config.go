package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/checkout/internal/catalog"
	"github.com/eugenenazirov/checkout/internal/checkout"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultOptimalRPS     = 2.0
	defaultOptimalBurst   = 4
	defaultMetricsNS      = "checkout"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                  string
	LogLevel              string
	CatalogFile           string
	Catalog               *catalog.Catalog
	DealApplicationCap    int
	ShutdownGracePeriod   time.Duration
	ReadHeaderTimeout     time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	EnableRequestLogging  bool
	MetricsEnabled        bool
	MetricsNamespace      string
	RateLimitRPS          float64
	RateLimitBurst        int
	OptimalRateLimitRPS   float64
	OptimalRateLimitBurst int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string           `yaml:"port"`
	LogLevel             string           `yaml:"log_level"`
	CatalogFile          string           `yaml:"catalog_file"`
	Catalog              *catalog.Catalog `yaml:"catalog"`
	DealApplicationCap   int              `yaml:"deal_application_cap"`
	ShutdownGracePeriod  string           `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string           `yaml:"read_header_timeout"`
	WriteTimeout         string           `yaml:"write_timeout"`
	IdleTimeout          string           `yaml:"idle_timeout"`
	EnableRequestLogging *bool            `yaml:"enable_request_logging"`
	Metrics              yamlMetrics      `yaml:"metrics"`
	RateLimit            yamlRateLimit    `yaml:"rate_limit"`
}

type yamlMetrics struct {
	Enabled   *bool  `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS          *float64 `yaml:"rps"`
	Burst        *int     `yaml:"burst"`
	OptimalRPS   *float64 `yaml:"optimal_rps"`
	OptimalBurst *int     `yaml:"optimal_burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile         string
	Port               *string
	LogLevel           *string
	CatalogFile        *string
	DealApplicationCap *int
	MetricsEnabled     *bool
	RateLimitRPS       *float64
	RateLimitBurst     *int
	OptimalRPS         *float64
	OptimalBurst       *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadCatalog resolves the catalog to serve: an explicit catalog file wins
// over a catalog embedded in the YAML config, which wins over the built-in one.
func (c Config) LoadCatalog() (catalog.Catalog, error) {
	switch {
	case c.CatalogFile != "":
		cat, err := catalog.LoadFile(c.CatalogFile)
		if err != nil {
			return catalog.Catalog{}, fmt.Errorf("load catalog %s: %w", c.CatalogFile, err)
		}
		return cat, nil
	case c.Catalog != nil:
		if err := c.Catalog.Validate(); err != nil {
			return catalog.Catalog{}, err
		}
		return c.Catalog.Clone(), nil
	default:
		return catalog.Default(), nil
	}
}

func defaultConfig() Config {
	return Config{
		Port:                  defaultPort,
		LogLevel:              "info",
		DealApplicationCap:    checkout.DefaultApplicationCap,
		ShutdownGracePeriod:   10 * time.Second,
		ReadHeaderTimeout:     5 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
		EnableRequestLogging:  true,
		MetricsEnabled:        true,
		MetricsNamespace:      defaultMetricsNS,
		RateLimitRPS:          defaultRateLimitRPS,
		RateLimitBurst:        defaultRateLimitBurst,
		OptimalRateLimitRPS:   defaultOptimalRPS,
		OptimalRateLimitBurst: defaultOptimalBurst,
	}
}

func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.CatalogFile != "" {
		cfg.CatalogFile = yamlCfg.CatalogFile
	}
	if yamlCfg.Catalog != nil {
		cfg.Catalog = yamlCfg.Catalog
	}
	if yamlCfg.DealApplicationCap != 0 {
		cfg.DealApplicationCap = yamlCfg.DealApplicationCap
	}

	durations := []struct {
		raw string
		dst *time.Duration
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", d.raw, err)
		}
		*d.dst = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.Metrics.Enabled != nil {
		cfg.MetricsEnabled = *yamlCfg.Metrics.Enabled
	}
	if yamlCfg.Metrics.Namespace != "" {
		cfg.MetricsNamespace = yamlCfg.Metrics.Namespace
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}
	if yamlCfg.RateLimit.OptimalRPS != nil {
		cfg.OptimalRateLimitRPS = *yamlCfg.RateLimit.OptimalRPS
	}
	if yamlCfg.RateLimit.OptimalBurst != nil {
		cfg.OptimalRateLimitBurst = *yamlCfg.RateLimit.OptimalBurst
	}
	return nil
}

func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if path := strings.TrimSpace(os.Getenv("CATALOG_FILE")); path != "" {
		cfg.CatalogFile = path
	}

	if raw := strings.TrimSpace(os.Getenv("DEAL_APPLICATION_CAP")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DealApplicationCap = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("METRICS_ENABLED")); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.MetricsEnabled = value
		}
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if rps := strings.TrimSpace(os.Getenv("OPTIMAL_RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.OptimalRateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("OPTIMAL_RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.OptimalRateLimitBurst = value
		}
	}
}

func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}
	if overrides.CatalogFile != nil && *overrides.CatalogFile != "" {
		cfg.CatalogFile = *overrides.CatalogFile
	}
	if overrides.DealApplicationCap != nil && *overrides.DealApplicationCap > 0 {
		cfg.DealApplicationCap = *overrides.DealApplicationCap
	}
	if overrides.MetricsEnabled != nil {
		cfg.MetricsEnabled = *overrides.MetricsEnabled
	}
	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}
	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
	if overrides.OptimalRPS != nil && *overrides.OptimalRPS >= 0 {
		cfg.OptimalRateLimitRPS = *overrides.OptimalRPS
	}
	if overrides.OptimalBurst != nil && *overrides.OptimalBurst >= 0 {
		cfg.OptimalRateLimitBurst = *overrides.OptimalBurst
	}
}

func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.OptimalRateLimitRPS < 0 || cfg.OptimalRateLimitBurst < 0 {
		return fmt.Errorf("optimal rate limit settings must be >= 0")
	}
	if cfg.DealApplicationCap <= 0 {
		return fmt.Errorf("deal application cap must be positive, got %d", cfg.DealApplicationCap)
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return fmt.Errorf("port cannot be empty")
	}
	return nil
}
