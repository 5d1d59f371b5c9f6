package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := `
storage:
  type: sqlite
  path: ./manifest.db
server:
  max_upload_mb: 8
csv:
  delimiter: ";"
  encoding: Windows-1252
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("MANIFEST_SERVER_ADDR", "127.0.0.1:9090")
	t.Setenv("MANIFEST_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.Storage.Type)
	assert.Equal(t, "./manifest.db", cfg.Storage.Path)
	assert.Equal(t, 8, cfg.Server.MaxUploadMB)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.Equal(t, "Windows-1252", cfg.CSV.Encoding)
	assert.Equal(t, "./exports", cfg.Export.OutputDir)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown storage", func(c *Config) { c.Storage.Type = "redis" }},
		{"file storage without path", func(c *Config) { c.Storage.Path = "" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"zero upload size", func(c *Config) { c.Server.MaxUploadMB = 0 }},
		{"empty delimiter", func(c *Config) { c.CSV.Delimiter = "" }},
		{"unknown encoding", func(c *Config) { c.CSV.Encoding = "EBCDIC" }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMemoryStorageNeedsNoPath(t *testing.T) {
	cfg := Default()
	cfg.Storage = StorageConfig{Type: StorageMemory}
	assert.NoError(t, cfg.Validate())
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	require.NoError(t, WriteDefault(path, false))
	assert.Error(t, WriteDefault(path, false), "existing file must not be overwritten")
	require.NoError(t, WriteDefault(path, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed Config
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	assert.Equal(t, *Default(), parsed)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
}
