package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalYAML = `
name: market-sync
host: 127.0.0.1
port: 8090
log_level: INFO
upstream:
  base_url: http://127.0.0.1:9000
storage:
  db_type: sqlite
  db_path: ./sync.db
`

// -----------------------------------------------------------------------------

func TestNewConfigAppliesDefaults(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, DefaultReconnectDelayMs, cfg.Sync.ReconnectDelayMs)
	assert.Equal(t, DefaultSessionRefreshSeconds, cfg.Sync.SessionRefreshSeconds)
	assert.Equal(t, DefaultLeaderboardRefreshSeconds, cfg.Sync.LeaderboardRefreshSeconds)
	assert.Equal(t, DefaultHistoryPoints, cfg.Sync.HistoryPoints)
	assert.Equal(t, DefaultWSPath, cfg.Upstream.WSPath)
	assert.Equal(t, 10, cfg.Network.RequestTimeout)
}

func TestNewConfigExplicitValuesWin(t *testing.T) {
	yaml := minimalYAML + `
sync:
  reconnect_delay_ms: 1500
  session_refresh_seconds: 2
upstream_extra: ignored
`
	cfg, err := NewConfig(writeConfig(t, yaml))
	require.NoError(t, err)
	assert.Equal(t, 1500, cfg.Sync.ReconnectDelayMs)
	assert.Equal(t, 2, cfg.Sync.SessionRefreshSeconds)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"low port", `
name: x
host: h
port: 80
upstream: {base_url: http://u}
storage: {db_type: sqlite, db_path: ./x.db}
`},
		{"missing upstream", `
name: x
host: h
port: 8090
storage: {db_type: sqlite, db_path: ./x.db}
`},
		{"non http upstream", `
name: x
host: h
port: 8090
upstream: {base_url: ftp://u}
storage: {db_type: sqlite, db_path: ./x.db}
`},
		{"unknown db type", `
name: x
host: h
port: 8090
upstream: {base_url: http://u}
storage: {db_type: redis}
`},
		{"sqlite without path", `
name: x
host: h
port: 8090
upstream: {base_url: http://u}
storage: {db_type: sqlite}
`},
		{"postgres without dsn", `
name: x
host: h
port: 8090
upstream: {base_url: http://u}
storage: {db_type: postgres}
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(writeConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

// -----------------------------------------------------------------------------

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(out))

	reloaded, err := NewConfig(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Port, reloaded.Port)
	assert.Equal(t, cfg.Sync.ReconnectDelayMs, reloaded.Sync.ReconnectDelayMs)
}
