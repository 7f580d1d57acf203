// config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCatalogURL  = "https://step.esa.int/auxdata/orbits/Sentinel-1"
	DefaultServerPort  = "8080"
	DefaultMargin      = 24 * time.Hour
	DefaultConcurrency = 4
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type CatalogConfig struct {
	BaseURL           string  `yaml:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutStr        string  `yaml:"timeout"`
	Manifest          string  `yaml:"manifest"` // Optional CSV manifest used instead of BaseURL
	// Parsed from TimeoutStr
	Timeout time.Duration `yaml:"-"`
}

type DownloadConfig struct {
	OutputDir   string `yaml:"output_dir"`
	Concurrency int    `yaml:"concurrency"`
	TimeoutStr  string        `yaml:"timeout"`
	Timeout     time.Duration `yaml:"-"`
}

// MarginsConfig widens the catalog query around a product's acquisition window.
// The final coverage check always uses the unwidened window.
type MarginsConfig struct {
	BeforeStr string `yaml:"before"`
	AfterStr  string `yaml:"after"`
	Before    time.Duration `yaml:"-"`
	After     time.Duration `yaml:"-"`
}

type Config struct {
	Server             ServerConfig   `yaml:"server"`
	Database           DatabaseConfig `yaml:"database"`
	Catalog            CatalogConfig  `yaml:"catalog"`
	Download           DownloadConfig `yaml:"download"`
	Margins            MarginsConfig  `yaml:"margins"`
	FallbackRestituted bool           `yaml:"fallback_restituted"`
}

var AppConfig Config

// LoadConfig reads configuration from the YAML file at configPath (optional),
// then a .env file in the working directory (optional), then EOF_* environment
// variables. Missing values fall back to defaults.
func LoadConfig(configPath string) error {
	cfg := Config{}

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return fmt.Errorf("failed to unmarshal config: %w", err)
		}
		log.Printf("Config: Loaded configuration from %s\n", configPath)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return err
	}
	if err := cfg.finalize(); err != nil {
		return err
	}

	AppConfig = cfg
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString("EOF_SERVER_PORT", &cfg.Server.Port)
	setString("EOF_DB_HOST", &cfg.Database.Host)
	setString("EOF_DB_PORT", &cfg.Database.Port)
	setString("EOF_DB_USER", &cfg.Database.User)
	setString("EOF_DB_PASSWORD", &cfg.Database.Password)
	setString("EOF_DB_NAME", &cfg.Database.DBName)
	setString("EOF_CATALOG_URL", &cfg.Catalog.BaseURL)
	setString("EOF_OUTPUT_DIR", &cfg.Download.OutputDir)

	if v, ok := os.LookupEnv("EOF_DB_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("failed to parse EOF_DB_ENABLED: %w", err)
		}
		cfg.Database.Enabled = enabled
	}
	return nil
}

// finalize fills defaults and parses duration strings.
func (cfg *Config) finalize() error {
	var err error

	if cfg.Server.Port == "" {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}
	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = DefaultCatalogURL
	}
	if cfg.Catalog.RequestsPerSecond < 0 {
		return fmt.Errorf("catalog.requests_per_second must not be negative, got %v", cfg.Catalog.RequestsPerSecond)
	}
	if cfg.Download.OutputDir == "" {
		cfg.Download.OutputDir = "."
	}
	if cfg.Download.Concurrency <= 0 {
		cfg.Download.Concurrency = DefaultConcurrency
	}

	if cfg.Catalog.Timeout, err = parseDuration(cfg.Catalog.TimeoutStr, 30*time.Second); err != nil {
		return fmt.Errorf("failed to parse catalog timeout: %w", err)
	}
	if cfg.Download.Timeout, err = parseDuration(cfg.Download.TimeoutStr, 5*time.Minute); err != nil {
		return fmt.Errorf("failed to parse download timeout: %w", err)
	}
	if cfg.Margins.Before, err = parseDuration(cfg.Margins.BeforeStr, DefaultMargin); err != nil {
		return fmt.Errorf("failed to parse margins.before: %w", err)
	}
	if cfg.Margins.After, err = parseDuration(cfg.Margins.AfterStr, DefaultMargin); err != nil {
		return fmt.Errorf("failed to parse margins.after: %w", err)
	}
	if cfg.Margins.Before <= 0 || cfg.Margins.After <= 0 {
		return fmt.Errorf("margins must be positive (before=%s, after=%s)", cfg.Margins.Before, cfg.Margins.After)
	}
	return nil
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
