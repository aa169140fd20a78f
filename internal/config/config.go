// Package config loads and validates server configuration from the
// environment, an optional .env file, and an optional YAML config file.
// Environment variables win over file values. All validation happens here
// at startup; the rest of the server never sees a half-formed config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ari-wein/mcp-panther/internal/permissions"
)

const (
	// TransportStdio serves MCP over stdin/stdout.
	TransportStdio = "stdio"
	// TransportStreamableHTTP serves MCP over streamable HTTP.
	TransportStreamableHTTP = "streamable-http"
)

// Config holds everything the server needs to start.
type Config struct {
	// InstanceURL is the Panther REST API base URL, e.g.
	// "https://api.example.runpanther.net/v1".
	InstanceURL string `yaml:"instance_url"`
	// APIToken is the Panther API token attached to every request.
	APIToken string `yaml:"api_token"`
	// APITimeout bounds each REST call.
	APITimeout time.Duration `yaml:"api_timeout"`
	// AllowedPermissions restricts the capability set granted to the
	// calling agent. Empty means every capability the server understands.
	AllowedPermissions []string `yaml:"allowed_permissions"`

	Transport string `yaml:"transport"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

func defaults() *Config {
	return &Config{
		APITimeout: 30 * time.Second,
		Transport:  TransportStdio,
		Host:       "127.0.0.1",
		Port:       3000,
		LogLevel:   "warn",
	}
}

// Load builds the configuration. A .env file in the working directory is
// applied first if present, then the YAML file at configPath (optional),
// then environment variables. Returns an error for missing required fields,
// malformed values, or unknown permission names.
func Load(configPath string) (*Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg := defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PANTHER_INSTANCE_URL"); v != "" {
		c.InstanceURL = v
	}
	if v := os.Getenv("PANTHER_API_TOKEN"); v != "" {
		c.APIToken = v
	}
	if v := os.Getenv("PANTHER_API_TIMEOUT"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return fmt.Errorf("PANTHER_API_TIMEOUT must be a positive number of seconds, got %q", v)
		}
		c.APITimeout = time.Duration(seconds) * time.Second
	}
	if v := os.Getenv("PANTHER_ALLOWED_PERMISSIONS"); v != "" {
		c.AllowedPermissions = splitList(v)
	}
	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		c.Transport = v
	}
	if v := os.Getenv("MCP_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("MCP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MCP_PORT must be a number, got %q", v)
		}
		c.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("MCP_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	return nil
}

func (c *Config) validate() error {
	if c.InstanceURL == "" {
		return fmt.Errorf("PANTHER_INSTANCE_URL is required")
	}
	if c.APIToken == "" {
		return fmt.Errorf("PANTHER_API_TOKEN is required")
	}
	if c.Transport != TransportStdio && c.Transport != TransportStreamableHTTP {
		return fmt.Errorf("transport must be %q or %q, got %q", TransportStdio, TransportStreamableHTTP, c.Transport)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	// Unknown permission names fail here, at startup, never per call.
	if _, err := c.GrantedPermissions(); err != nil {
		return err
	}
	return nil
}

// GrantedPermissions returns the capability set granted to the calling
// agent for the lifetime of the process.
func (c *Config) GrantedPermissions() (permissions.Set, error) {
	if len(c.AllowedPermissions) == 0 {
		return permissions.All(), nil
	}
	return permissions.Parse(c.AllowedPermissions)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
