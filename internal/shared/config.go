package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Providers ProvidersConfig `toml:"providers"`
	Cache     CacheConfig     `toml:"cache"`
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
}

// ProvidersConfig contains per-provider settings.
type ProvidersConfig struct {
	LastFM      LastFMConfig      `toml:"lastfm"`
	MusicBrainz MusicBrainzConfig `toml:"musicbrainz"`
	ITunes      ITunesConfig      `toml:"itunes"`
}

// LastFMConfig contains Last.fm API credentials and limits.
type LastFMConfig struct {
	APIKey         string `toml:"api_key" validate:"required"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// MusicBrainzConfig contains MusicBrainz client settings.
//
// MusicBrainz requires a descriptive User-Agent and asks clients to stay
// at or below one request per second.
type MusicBrainzConfig struct {
	BaseURL           string  `toml:"base_url"`
	UserAgent         string  `toml:"user_agent" validate:"required"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// ITunesConfig contains iTunes Search API settings.
type ITunesConfig struct {
	BaseURL        string `toml:"base_url"`
	Country        string `toml:"country" validate:"required,len=2"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// CacheConfig contains TTL settings for the shared provider cache.
type CacheConfig struct {
	LastFMTTLSeconds int `toml:"lastfm_ttl_seconds"`
	LookupTTLSeconds int `toml:"lookup_ttl_seconds"`
	MaxEntries       int `toml:"max_entries"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Validate checks required fields (provider credentials and client
// identification). A config that fails validation is unusable and the
// caller should treat the error as fatal.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Environment variable TUNESIFT_LASTFM_API_KEY overrides the file value so
// the key can stay out of checked-in configs.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if key := os.Getenv("TUNESIFT_LASTFM_API_KEY"); key != "" {
		config.Providers.LastFM.APIKey = key
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	if key := os.Getenv("TUNESIFT_LASTFM_API_KEY"); key != "" {
		config.Providers.LastFM.APIKey = key
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
