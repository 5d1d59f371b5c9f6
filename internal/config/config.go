// =============================================================================
// Pallet Manifest Importer - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Values come from three
// layers, later layers overriding earlier ones:
//
//   1. Built-in defaults (see Default)
//   2. The config file (manifest.yaml in the working directory, or --config)
//   3. Environment variables prefixed with MANIFEST_, with dots replaced by
//      underscores (MANIFEST_STORAGE_TYPE=sqlite overrides storage.type)
//
// A missing config file is not an error. Every other problem is, and the
// loaded configuration is validated before it is returned.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "MANIFEST"

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "manifest.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Export  ExportConfig  `mapstructure:"export" yaml:"export"`
	CSV     CSVSettings   `mapstructure:"csv" yaml:"csv"`
}

// StorageConfig selects the key-value backend that persists the last import
// and the user settings between runs.
type StorageConfig struct {
	// Type is one of "memory", "file" or "sqlite".
	// "memory" keeps nothing between runs.
	// Default: "file"
	Type string `mapstructure:"type" yaml:"type"`

	// Path is a directory for the file backend and a database file for the
	// sqlite backend.
	// Default: "./.manifest-data"
	Path string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "info"
	Level string `mapstructure:"level" yaml:"level"`

	// Format is "console" for human output or "json" for structured lines.
	// Default: "console"
	Format string `mapstructure:"format" yaml:"format"`

	NoColor bool `mapstructure:"no_color" yaml:"no_color"`
}

// ServerConfig holds the HTTP server settings used by 'manifest serve'.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `mapstructure:"addr" yaml:"addr"`

	// MaxUploadMB caps the size of an uploaded manifest.
	// Default: 32
	MaxUploadMB int `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// ExportConfig controls where exported files are written.
type ExportConfig struct {
	// OutputDir is the directory for exported CSV and XLSX files.
	// Default: "./exports"
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// FileNameFormat is the pattern for export file names, without extension.
	// Supported placeholders: {original}, {kind}, {timestamp}, {date}, {uuid}
	// Default: "{original}_{kind}_{timestamp}"
	FileNameFormat string `mapstructure:"file_name_format" yaml:"file_name_format"`
}

// CSVSettings contains settings for reading manifests exported as CSV.
type CSVSettings struct {
	// Delimiter separates fields. "tab", "pipe" and "semicolon" are accepted
	// as names.
	// Default: ","
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// Encoding is the character encoding of the file.
	// Supported values: "UTF-8", "Windows-1252", "ISO-8859-1"
	// Default: "UTF-8"
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
}

// Storage backends.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// SupportedEncodings lists the CSV encodings the reader can decode.
var SupportedEncodings = []string{"UTF-8", "Windows-1252", "ISO-8859-1"}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Type: StorageFile,
			Path: "./.manifest-data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 32,
		},
		Export: ExportConfig{
			OutputDir:      "./exports",
			FileNameFormat: "{original}_{kind}_{timestamp}",
		},
		CSV: CSVSettings{
			Delimiter: ",",
			Encoding:  "UTF-8",
		},
	}
}

// setDefaults registers every key of Default with viper. Registering the
// keys is also what lets AutomaticEnv resolve them during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.path", d.Storage.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.no_color", d.Logging.NoColor)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)

	v.SetDefault("export.output_dir", d.Export.OutputDir)
	v.SetDefault("export.file_name_format", d.Export.FileNameFormat)

	v.SetDefault("csv.delimiter", d.CSV.Delimiter)
	v.SetDefault("csv.encoding", d.CSV.Encoding)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: An explicit config file. When empty, manifest.yaml is
//     looked up in the working directory and may be absent.
//
// RETURNS:
//   - The validated configuration.
//   - An error if an explicit file is missing, a file cannot be parsed, or
//     validation fails.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory:
	case StorageFile, StorageSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for %s storage", c.Storage.Type)
		}
	default:
		return fmt.Errorf("unknown storage.type %q", c.Storage.Type)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}

	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}

	if c.CSV.Delimiter == "" {
		return fmt.Errorf("csv.delimiter must not be empty")
	}

	if !IsSupportedEncoding(c.CSV.Encoding) {
		return fmt.Errorf("unsupported csv.encoding %q (supported: %s)",
			c.CSV.Encoding, strings.Join(SupportedEncodings, ", "))
	}

	return nil
}

// IsSupportedEncoding reports whether name is one of SupportedEncodings,
// ignoring case.
func IsSupportedEncoding(name string) bool {
	for _, e := range SupportedEncodings {
		if strings.EqualFold(e, name) {
			return true
		}
	}
	return false
}

// =============================================================================
// OUTPUT
// =============================================================================

// ToYAML renders the configuration as it would appear in manifest.yaml.
func (c *Config) ToYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}

// WriteDefault writes the built-in configuration to path. An existing file
// is left untouched unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	out, err := Default().ToYAML()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
