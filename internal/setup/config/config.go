package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
)

// Current version of the config files.
const (
	CurrentCommonVersion = 1
	CurrentWorkerVersion = 1
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig
	Worker WorkerConfig
}

// CommonConfig contains configuration shared between the API server and workers.
type CommonConfig struct {
	// Version of the common config.
	Version    int        `koanf:"version"`
	Debug      Debug      `koanf:"debug"`
	Retry      Retry      `koanf:"retry"`
	PostgreSQL PostgreSQL `koanf:"postgresql"`
	Redis      Redis      `koanf:"redis"`
	StatusAPI  StatusAPI  `koanf:"status_api"`
	Site       Site       `koanf:"site"`
	API        APIConfig  `koanf:"api"`
}

// WorkerConfig contains worker specific configuration.
type WorkerConfig struct {
	// Version of the worker config.
	Version int `koanf:"version"`
	// Maximum servers checked per scan cycle.
	ScanBatchSize int `koanf:"scan_batch_size"`
	// Pause between per-server checks in milliseconds.
	ScanDelay int `koanf:"scan_delay"`
	// Pause between scan cycles in seconds.
	ScanInterval int `koanf:"scan_interval"`
	// Status sample retention in days.
	SampleRetentionDays int `koanf:"sample_retention_days"`
	// Analytics event retention in days.
	EventRetentionDays int `koanf:"event_retention_days"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Base directory for log files; empty logs to stderr only.
	LogDir string `koanf:"log_dir"`
}

// Retry contains database retry configuration.
type Retry struct {
	// Maximum retry attempts.
	MaxRetries uint64 `koanf:"max_retries"`
	// Initial retry delay in milliseconds.
	Delay int `koanf:"delay"`
	// Maximum retry delay in milliseconds.
	MaxDelay int `koanf:"max_delay"`
}

// PostgreSQL contains database connection configuration.
// An empty Host disables every database-backed feature instead of failing startup.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Enabled reports whether database credentials are configured.
func (p *PostgreSQL) Enabled() bool {
	return p.Host != ""
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// StatusAPI contains the third-party status endpoint configuration.
type StatusAPI struct {
	// Primary status API base URL (per-family paths).
	PrimaryURL string `koanf:"primary_url"`
	// Fallback status API base URL (Java only).
	FallbackURL string `koanf:"fallback_url"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Cached result lifetime in minutes.
	CacheTTL int `koanf:"cache_ttl"`
}

// Site contains public site configuration used for sitemap generation.
type Site struct {
	// Public base URL, e.g. https://craftlist.example.com.
	BaseURL string `koanf:"base_url"`
}

// APIConfig contains inbound API server configuration.
type APIConfig struct {
	// Listen address for the REST server.
	ListenAddr string `koanf:"listen_addr"`
	// Allowed CORS origins.
	AllowedOrigins []string `koanf:"allowed_origins"`
	// Salt mixed into visitor address hashes.
	VisitorSalt string `koanf:"visitor_salt"`
	// Bearer token guarding the admin endpoints.
	AdminToken string `koanf:"admin_token"`
}

// LoadConfig loads the configuration from the config files.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths
	configPaths := []string{
		".craftlist",
		homeDir + "/.craftlist/config",
		"/etc/craftlist/config",
		"/app/config",
		"config",
		".",
	}

	// Load all config files
	var usedConfigPath string

	configFiles := []string{"common", "worker"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Check versions for each config file
	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("worker", config.Worker.Version, CurrentWorkerVersion); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// checkConfigVersion verifies that a config file has the expected version.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf("%w: %s.toml has version %d, expected %d",
			ErrConfigVersionMismatch, name, current, expected)
	}

	return nil
}
