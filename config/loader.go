package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name searched for in the
// current directory.
const DefaultConfigFile = ".stegano.yaml"

// File is the on-disk YAML configuration. Unset fields keep the value
// already present in the Config they are applied to.
type File struct {
	Channel      string     `yaml:"channel"`
	Resample     string     `yaml:"resample"`
	Workers      int        `yaml:"workers"`
	MinPSNR      float64    `yaml:"min_psnr"`
	OutputFormat string     `yaml:"output_format"`
	Verbose      *bool      `yaml:"verbose"`
	JSONLogs     *bool      `yaml:"json_logs"`
	Server       ServerFile `yaml:"server"`
}

// ServerFile is the server section of File.
type ServerFile struct {
	Addr           string   `yaml:"addr"`
	AllowOrigins   []string `yaml:"allow_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .stegano.yaml in the current directory
// 3. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}

// Apply overlays the values set in f onto c.
func (f *File) Apply(c *Config) {
	if f.Channel != "" {
		c.Channel = f.Channel
	}
	if f.Resample != "" {
		c.Resample = f.Resample
	}
	if f.Workers != 0 {
		c.Workers = f.Workers
	}
	if f.MinPSNR != 0 {
		c.MinPSNR = f.MinPSNR
	}
	if f.OutputFormat != "" {
		c.OutputFormat = f.OutputFormat
	}
	if f.Verbose != nil {
		c.Verbose = *f.Verbose
	}
	if f.JSONLogs != nil {
		c.JSONLogs = *f.JSONLogs
	}
	if f.Server.Addr != "" {
		c.Addr = f.Server.Addr
	}
	if len(f.Server.AllowOrigins) > 0 {
		c.AllowOrigins = f.Server.AllowOrigins
	}
	if f.Server.MaxUploadBytes != 0 {
		c.MaxUploadBytes = f.Server.MaxUploadBytes
	}
}

// Load builds a Config from defaults and the configuration file found by
// FindConfigFile. An explicitly named file that does not exist is an error;
// a missing default file is not.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()

	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, ErrConfigNotFound
		}
		return cfg, nil
	}

	file, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	file.Apply(cfg)
	cfg.ConfigFilePath = path
	return cfg, nil
}
