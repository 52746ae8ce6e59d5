package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Upstream MUpstreamConfig `yaml:"upstream"`
	Storage  MStorageConfig  `yaml:"storage"`
	Network  MNetworkConfig  `yaml:"network"`
	Sync     MSyncConfig     `yaml:"sync"`
}

type MUpstreamConfig struct {
	BaseURL string `yaml:"base_url"` // http(s) origin of the market backend
	WSPath  string `yaml:"ws_path"`  // push channel path, default "/ws"
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

type MSyncConfig struct {
	ReconnectDelayMs          int `yaml:"reconnect_delay_ms"`
	SessionRefreshSeconds     int `yaml:"session_refresh_seconds"`
	LeaderboardRefreshSeconds int `yaml:"leaderboard_refresh_seconds"`
	HistoryPoints             int `yaml:"history_points"`
}
