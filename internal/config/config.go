package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the top-level toolbox configuration.
type Config struct {
	Workspace WorkspaceConfig `json:"workspace" yaml:"workspace"`
	Shell     ShellConfig     `json:"shell" yaml:"shell"`
	Web       WebConfig       `json:"web" yaml:"web"`
	Memory    MemoryConfig    `json:"memory" yaml:"memory"`
	API       APIConfig       `json:"api" yaml:"api"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// WorkspaceConfig holds the sandbox root settings.
type WorkspaceConfig struct {
	Root string `json:"root" yaml:"root"`
}

// ShellConfig holds command-executor settings.
type ShellConfig struct {
	TimeoutSeconds  int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"` // default 30
	RateLimitPerMin int `json:"rate_limit_per_min,omitempty" yaml:"rate_limit_per_min,omitempty"`
}

// WebConfig holds web tool settings.
type WebConfig struct {
	SearchBaseURL       string `json:"search_base_url,omitempty" yaml:"search_base_url,omitempty"`
	FetchTimeoutSeconds int    `json:"fetch_timeout_seconds,omitempty" yaml:"fetch_timeout_seconds,omitempty"`
}

// MemoryConfig holds persistent memory settings. An empty Path disables
// the memory tools.
type MemoryConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// APIConfig holds HTTP server settings for toolboxd. An empty Key
// disables Bearer auth.
type APIConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`
	Key  string `json:"key,omitempty" yaml:"key,omitempty"`
}

// LogConfig holds logging and activity-ring settings.
type LogConfig struct {
	Level        string `json:"level,omitempty" yaml:"level,omitempty"`
	ActivitySize int    `json:"activity_size,omitempty" yaml:"activity_size,omitempty"`
}

// Default returns the configuration used when no file is given:
// workspace is the current directory, shell timeout 30s, activity
// ring of 256 records.
func Default() *Config {
	return &Config{
		Workspace: WorkspaceConfig{Root: "."},
		Shell:     ShellConfig{TimeoutSeconds: 30, RateLimitPerMin: 20},
		Web:       WebConfig{FetchTimeoutSeconds: 30},
		API:       APIConfig{Host: "127.0.0.1", Port: 8720},
		Log:       LogConfig{Level: "info", ActivitySize: 256},
	}
}

// Load reads configuration from a JSON or YAML file, chosen by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	default:
		return nil, errors.Errorf("config %s: unsupported extension (want .json, .yaml or .yml)", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv applies TOOLBOX_-prefixed environment overrides on top of cfg.
func FromEnv(cfg *Config) *Config {
	cfg.Workspace.Root = getenv("TOOLBOX_WORKSPACE", cfg.Workspace.Root)
	cfg.Shell.TimeoutSeconds = getenvInt("TOOLBOX_SHELL_TIMEOUT", cfg.Shell.TimeoutSeconds)
	cfg.Shell.RateLimitPerMin = getenvInt("TOOLBOX_SHELL_RATE_LIMIT", cfg.Shell.RateLimitPerMin)
	cfg.Web.SearchBaseURL = getenv("TOOLBOX_SEARCH_BASE_URL", cfg.Web.SearchBaseURL)
	cfg.Web.FetchTimeoutSeconds = getenvInt("TOOLBOX_FETCH_TIMEOUT", cfg.Web.FetchTimeoutSeconds)
	cfg.Memory.Path = getenv("TOOLBOX_MEMORY_PATH", cfg.Memory.Path)
	cfg.API.Host = getenv("TOOLBOX_API_HOST", cfg.API.Host)
	cfg.API.Port = getenvInt("TOOLBOX_API_PORT", cfg.API.Port)
	cfg.API.Key = getenv("TOOLBOX_API_KEY", cfg.API.Key)
	cfg.Log.Level = getenv("TOOLBOX_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.ActivitySize = getenvInt("TOOLBOX_ACTIVITY_SIZE", cfg.Log.ActivitySize)
	return cfg
}

// Validate checks for required fields and sane ranges.
func (c *Config) Validate() error {
	var errs []string

	if c.Workspace.Root == "" {
		errs = append(errs, "workspace.root is required")
	} else if info, err := os.Stat(c.Workspace.Root); err != nil {
		errs = append(errs, fmt.Sprintf("workspace.root %q does not exist", c.Workspace.Root))
	} else if !info.IsDir() {
		errs = append(errs, fmt.Sprintf("workspace.root %q is not a directory", c.Workspace.Root))
	}

	if c.Shell.TimeoutSeconds < 1 || c.Shell.TimeoutSeconds > 60 {
		errs = append(errs, fmt.Sprintf("shell.timeout_seconds must be in [1, 60], got %d", c.Shell.TimeoutSeconds))
	}
	if c.Shell.RateLimitPerMin < 0 {
		errs = append(errs, "shell.rate_limit_per_min must not be negative")
	}

	if c.Web.FetchTimeoutSeconds < 1 {
		errs = append(errs, fmt.Sprintf("web.fetch_timeout_seconds must be positive, got %d", c.Web.FetchTimeoutSeconds))
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, fmt.Sprintf("api.port must be in [1, 65535], got %d", c.API.Port))
	}

	if c.Log.ActivitySize <= 0 {
		errs = append(errs, fmt.Sprintf("log.activity_size must be positive, got %d", c.Log.ActivitySize))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be one of debug/info/warn/error, got %q", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
