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
	path := filepath.Join(t.TempDir(), "bounceview.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Empty(t, cfg.Store.Path)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"
format = "json"

[mailbox]
dir = "mail"

[server]
listen = "127.0.0.1:9090"

[scan]
workers = 8

[store]
path = "/var/lib/bounceview/suppress.db"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "mail"), cfg.Mailbox.Dir)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Listen)
	assert.Equal(t, 8, cfg.Scan.Workers)
	assert.Equal(t, "/var/lib/bounceview/suppress.db", cfg.Store.Path)
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[scan]\nworkers = 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "[logging\nlevel = "},
		{"bad level", "[logging]\nlevel = \"loud\"\n"},
		{"bad format", "[logging]\nformat = \"xml\"\n"},
		{"no workers", "[scan]\nworkers = 0\n"},
		{"empty listen", "[server]\nlisten = \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	path := writeConfig(t, "")
	found, err := FindConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	_, err = FindConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
