package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// ConfigEnvVar names the environment variable that overrides the default config path.
const ConfigEnvVar = "SONGBOOK_CONFIG"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Catalog     CatalogConfig  `toml:"catalog"`
	Database    DatabaseConfig `toml:"database"`
	Server      ServerConfig   `toml:"server"`
	Preferences map[string]any `toml:"preferences"`
}

// CatalogConfig locates the catalog document and the default view over it.
type CatalogConfig struct {
	Source          string `toml:"source"`
	URL             string `toml:"url"`
	HeadersPath     string `toml:"headers_path"`
	Timeout         int    `toml:"timeout"`
	DefaultLanguage string `toml:"default_language"`
	DefaultSort     string `toml:"default_sort"`
	DefaultOrder    string `toml:"default_order"`
}

// FetchTimeout returns the remote fetch timeout, falling back to 30s when unset.
func (c CatalogConfig) FetchTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

// Addr joins host and port into a listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values absent from the file keep the defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ConfigPath resolves the config file location: flag value first, then [ConfigEnvVar], then "config.toml".
func ConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(ConfigEnvVar); env != "" {
		return env
	}
	return "config.toml"
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
