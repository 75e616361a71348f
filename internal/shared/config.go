package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Client   ClientConfig   `toml:"client"`
	Library  LibraryConfig  `toml:"library"`
	Playback PlaybackConfig `toml:"playback"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings for the catalog API.
//
// AdminToken, when set, is required as a bearer token on mutating routes.
// It is normally supplied through SONIC57_ADMIN_TOKEN rather than the file.
type ServerConfig struct {
	Host           string  `toml:"host"`
	Port           int     `toml:"port"`
	AdminToken     string  `toml:"admin_token"`
	MaxBodyMB      int     `toml:"max_body_mb"`
	WriteRate      float64 `toml:"write_rate"`
	WriteBurst     int     `toml:"write_burst"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Debug          bool    `toml:"debug"`
}

// ClientConfig describes how the client reaches the catalog API.
type ClientConfig struct {
	APIURL         string `toml:"api_url"`
	AdminToken     string `toml:"admin_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LibraryConfig selects the durable store for the personal library and catalog cache.
type LibraryConfig struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	SeedDefaults  bool   `toml:"seed_defaults"`
	PruneOnDelete bool   `toml:"prune_on_delete"`
}

// PlaybackConfig holds transport defaults.
type PlaybackConfig struct {
	Volume              float64 `toml:"volume"`
	AutoAdvance         bool    `toml:"auto_advance"`
	MaxMediaMB          int     `toml:"max_media_mb"`
	FetchTimeoutSeconds int     `toml:"fetch_timeout_seconds"`
}

// StorageConfig configures the optional S3-compatible object store used for
// uploaded cover art and audio. When disabled, binary media is embedded as data URIs.
type StorageConfig struct {
	Enabled   bool   `toml:"enabled"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	PublicURL string `toml:"public_url"`
	Prefix    string `toml:"prefix"`
}

// LogConfig controls log level and destination.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
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

// ApplyEnv overlays SONIC57_* environment variables onto the config.
// Secrets are expected to arrive this way.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("SONIC57_DATABASE_PATH"); ok {
		c.Database.Path = v
	}
	if v, ok := os.LookupEnv("SONIC57_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: SONIC57_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv("SONIC57_ADMIN_TOKEN"); ok {
		c.Server.AdminToken = v
		c.Client.AdminToken = v
	}
	if v, ok := os.LookupEnv("SONIC57_API_URL"); ok {
		c.Client.APIURL = v
	}
	if v, ok := os.LookupEnv("SONIC57_S3_ACCESS_KEY"); ok {
		c.Storage.AccessKey = v
	}
	if v, ok := os.LookupEnv("SONIC57_S3_SECRET_KEY"); ok {
		c.Storage.SecretKey = v
	}
	return nil
}

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Playback.Volume < 0 || c.Playback.Volume > 1 {
		return fmt.Errorf("%w: playback.volume must be within [0,1]", ErrInvalidConfig)
	}
	switch c.Library.Backend {
	case "", "file", "sqlite", "memory":
	default:
		return fmt.Errorf("%w: unknown library.backend %q", ErrInvalidConfig, c.Library.Backend)
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("%w: storage.bucket is required when storage is enabled", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address for the API server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout returns the per-request server timeout.
func (s ServerConfig) Timeout() time.Duration {
	return secondsOr(s.TimeoutSeconds, 30)
}

// MaxBodyBytes returns the request body cap in bytes.
func (s ServerConfig) MaxBodyBytes() int64 {
	if s.MaxBodyMB <= 0 {
		return 50 << 20
	}
	return int64(s.MaxBodyMB) << 20
}

// Timeout returns the client request timeout.
func (c ClientConfig) Timeout() time.Duration {
	return secondsOr(c.TimeoutSeconds, 10)
}

// FetchTimeout bounds how long loading a media source may take.
func (p PlaybackConfig) FetchTimeout() time.Duration {
	return secondsOr(p.FetchTimeoutSeconds, 30)
}

// MaxMediaBytes returns the largest accepted media payload in bytes.
func (p PlaybackConfig) MaxMediaBytes() int64 {
	if p.MaxMediaMB <= 0 {
		return 50 << 20
	}
	return int64(p.MaxMediaMB) << 20
}

func secondsOr(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}
