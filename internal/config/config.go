package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/nishad/srake-eutils/internal/errors"
	"github.com/nishad/srake-eutils/internal/paths"
	"gopkg.in/yaml.v3"
)

// Config represents the srake-eutils configuration
type Config struct {
	Eutils EutilsConfig `yaml:"eutils"`
	Store  StoreConfig  `yaml:"store"`  // Local run cache
	Server ServerConfig `yaml:"server"` // HTTP gateway
}

// EutilsConfig contains settings for the remote eutils service
type EutilsConfig struct {
	BaseURL    string `yaml:"base_url"`
	SequenceDB string `yaml:"sequence_db"` // default db for esearch/efetch
	RunDB      string `yaml:"run_db"`      // read archive db for run lookups
	ChunkSize  int    `yaml:"chunk_size"`  // bytes per read of a fetch body
	Timeout    int    `yaml:"timeout"`     // in seconds, 0 disables
	UserAgent  string `yaml:"user_agent"`
}

// StoreConfig contains SQLite run cache settings
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig contains HTTP gateway settings
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	EnableCORS bool   `yaml:"enable_cors"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Eutils: EutilsConfig{
			BaseURL:    "https://eutils.ncbi.nlm.nih.gov",
			SequenceDB: "nuccore",
			RunDB:      "sra",
			ChunkSize:  32768,
			Timeout:    0,
			UserAgent:  "srake-eutils",
		},
		Store: StoreConfig{
			Path: paths.GetStorePath(),
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	const op errors.Op = "config.Load"
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.E(op, errors.KindParse, err, "failed to parse config file")
	}

	config.Store.Path = expandPath(config.Store.Path)

	if err := config.Validate(); err != nil {
		return nil, errors.WrapMsg(op, path, err)
	}

	return config, nil
}

// Validate checks values that would otherwise fail later at request time
func (c *Config) Validate() error {
	const op errors.Op = "config.Validate"

	u, err := url.Parse(c.Eutils.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.E(op, errors.KindConfig, fmt.Sprintf("invalid eutils base_url %q", c.Eutils.BaseURL))
	}
	if c.Eutils.SequenceDB == "" || c.Eutils.RunDB == "" {
		return errors.E(op, errors.KindConfig, "sequence_db and run_db must be set")
	}
	if c.Eutils.ChunkSize <= 0 {
		return errors.E(op, errors.KindConfig, fmt.Sprintf("chunk_size must be positive, got %d", c.Eutils.ChunkSize))
	}
	if c.Eutils.Timeout < 0 {
		return errors.E(op, errors.KindConfig, fmt.Sprintf("timeout must not be negative, got %d", c.Eutils.Timeout))
	}
	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	const op errors.Op = "config.Save"

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.E(op, errors.KindIO, err, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.E(op, errors.KindParse, err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.E(op, errors.KindIO, err, "failed to write config file")
	}

	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	if path := os.Getenv("SRAKE_EUTILS_CONFIG"); path != "" {
		return path
	}

	if _, err := os.Stat("srake-eutils.yaml"); err == nil {
		return "srake-eutils.yaml"
	}

	p := paths.GetPaths()
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// RequestTimeout returns the per-request timeout, zero meaning none
func (e EutilsConfig) RequestTimeout() time.Duration {
	return time.Duration(e.Timeout) * time.Second
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}

	return path
}
