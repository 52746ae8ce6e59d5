package config

import (
	"fmt"
	"os"
	"strings"

	"market-sync/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Defaults applied when the YAML omits a value.
const (
	DefaultReconnectDelayMs          = 3000
	DefaultSessionRefreshSeconds     = 5
	DefaultLeaderboardRefreshSeconds = 10
	DefaultHistoryPoints             = 300
	DefaultWSPath                    = "/ws"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Sync.ReconnectDelayMs == 0 {
		c.Sync.ReconnectDelayMs = DefaultReconnectDelayMs
	}
	if c.Sync.SessionRefreshSeconds == 0 {
		c.Sync.SessionRefreshSeconds = DefaultSessionRefreshSeconds
	}
	if c.Sync.LeaderboardRefreshSeconds == 0 {
		c.Sync.LeaderboardRefreshSeconds = DefaultLeaderboardRefreshSeconds
	}
	if c.Sync.HistoryPoints == 0 {
		c.Sync.HistoryPoints = DefaultHistoryPoints
	}
	if c.Upstream.WSPath == "" {
		c.Upstream.WSPath = DefaultWSPath
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Upstream configuration
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base_url cannot be empty")
	}
	if !strings.HasPrefix(c.Upstream.BaseURL, "http://") && !strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		return fmt.Errorf("upstream base_url must be an http(s) origin, got '%s'", c.Upstream.BaseURL)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported db_type: %s", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate Sync configuration
	if c.Sync.ReconnectDelayMs <= 0 {
		return fmt.Errorf("reconnect delay must be greater than 0")
	}
	if c.Sync.SessionRefreshSeconds <= 0 {
		return fmt.Errorf("session refresh interval must be greater than 0")
	}
	if c.Sync.LeaderboardRefreshSeconds <= 0 {
		return fmt.Errorf("leaderboard refresh interval must be greater than 0")
	}
	if c.Sync.HistoryPoints <= 0 {
		return fmt.Errorf("history points must be greater than 0")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 2. Write to file
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file '%s': %w", configPath, err)
	}
	return nil
}
