package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/me/nekohub/pkg/posts"
)

// Environment variables that override the config file.
const (
	EnvServer    = "NEKOHUB_SERVER"
	EnvTimeout   = "NEKOHUB_TIMEOUT"
	EnvPageSize  = "NEKOHUB_PAGE_SIZE"
	EnvLogLevel  = "NEKOHUB_LOG_LEVEL"
	EnvLogFormat = "NEKOHUB_LOG_FORMAT"
	EnvLogFile   = "NEKOHUB_LOG_FILE"
)

// ClientConfig holds configuration for the nekohub client.
type ClientConfig struct {
	Server    string        `yaml:"server" json:"server"`         // API base address
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`       // Per-request timeout (default 15s)
	PageSize  int           `yaml:"page_size" json:"page_size"`   // Posts per page in the list view
	LogLevel  string        `yaml:"log_level" json:"log_level"`   // Log level: debug, info, warn, error
	LogFormat string        `yaml:"log_format" json:"log_format"` // Log format: text, json
	LogFile   string        `yaml:"log_file" json:"log_file"`     // Optional rotating log file; stderr when empty
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Server:    posts.DefaultBaseURL,
		Timeout:   posts.DefaultTimeout,
		PageSize:  10,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// PostsConfig converts the client settings into a posts.Config.
func (c ClientConfig) PostsConfig() posts.Config {
	return posts.DefaultConfig().WithBaseURL(c.Server).WithTimeout(c.Timeout)
}

// DefaultPath returns ~/.nekohub/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".nekohub", "config.yaml"), nil
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (a missing file is not an error), then a .env file in the working
// directory, then NEKOHUB_* environment variables.
func Load(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// .env is optional; existing environment variables win over it.
	_ = godotenv.Load(".env")

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *ClientConfig) error {
	if v := os.Getenv(EnvServer); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		cfg.PageSize = n
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
	}
	return nil
}

// Validate rejects settings the client cannot run with.
func (c ClientConfig) Validate() error {
	if c.Server == "" {
		return errors.New("server address is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be >= 1, got %d", c.PageSize)
	}
	return nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c ClientConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DevServerConfig holds configuration for the development backend.
type DevServerConfig struct {
	Addr      string // Listen address (default ":5249")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
	Seed      int    // Number of sample posts created at startup
	DBPath    string // SQLite database path; in-memory when empty
}

// DefaultDevServerConfig returns sensible defaults.
func DefaultDevServerConfig() DevServerConfig {
	return DevServerConfig{
		Addr:      ":5249",
		LogLevel:  "info",
		LogFormat: "text",
	}
}
