package shared

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvPrefix is prepended to every environment override, e.g. TUNENAME_SPOTIFY_CLIENT_ID.
const EnvPrefix = "tunename"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	LogLevel    string            `toml:"log_level"`
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Search      SearchConfig      `toml:"search"`
	Cache       CacheConfig       `toml:"cache"`
	Playlist    PlaylistConfig    `toml:"playlist"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
//
// ClientID and ClientSecret drive the client credentials flow used for catalog search.
// AccessToken is a user token, only needed to save playlists to a Spotify account.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AccessToken  string `toml:"access_token"`
	Market       string `toml:"market"`
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

// SearchConfig tunes the contact search loop.
type SearchConfig struct {
	RoundTimeoutSeconds int     `toml:"round_timeout_seconds"` // Upper bound on a single search round
	Concurrency         int     `toml:"concurrency"`           // Simultaneous backend requests per round
	RateLimit           float64 `toml:"rate_limit"`            // Backend requests per second
	DefaultCount        int     `toml:"default_count"`         // Songs requested per contact when contacts are plentiful
	MinSongFraction     float64 `toml:"min_song_fraction"`     // A playlist must fill more than this fraction of the target
}

// RoundTimeout returns the configured round timeout as a [time.Duration].
func (c SearchConfig) RoundTimeout() time.Duration {
	return time.Duration(c.RoundTimeoutSeconds) * time.Second
}

// CacheConfig selects and configures the search result cache.
type CacheConfig struct {
	Backend   string `toml:"backend"` // sqlite, valkey or none
	TTLHours  int    `toml:"ttl_hours"`
	ValkeyURL string `toml:"valkey_url"`
}

// TTL returns the configured cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// PlaylistConfig contains defaults for generated playlists.
type PlaylistConfig struct {
	Name string `toml:"name"`
}

// envOverrides lists the settings that can be supplied through the environment.
type envOverrides struct {
	LogLevel            string  `envconfig:"LOG_LEVEL"`
	SpotifyClientID     string  `envconfig:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string  `envconfig:"SPOTIFY_CLIENT_SECRET"`
	SpotifyAccessToken  string  `envconfig:"SPOTIFY_ACCESS_TOKEN"`
	SpotifyMarket       string  `envconfig:"SPOTIFY_MARKET"`
	DatabasePath        string  `envconfig:"DATABASE_PATH"`
	ServerHost          string  `envconfig:"SERVER_HOST"`
	ServerPort          int     `envconfig:"SERVER_PORT"`
	SearchConcurrency   int     `envconfig:"SEARCH_CONCURRENCY"`
	SearchRateLimit     float64 `envconfig:"SEARCH_RATE_LIMIT"`
	CacheBackend        string  `envconfig:"CACHE_BACKEND"`
	ValkeyURL           string  `envconfig:"VALKEY_URL"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
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

// SaveConfig encodes config as TOML and writes it to path, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv loads dotenvPath (when present) into the process environment and
// then overrides config with any TUNENAME_* variables that are set.
func ApplyEnv(config *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	setString(&config.LogLevel, env.LogLevel)
	setString(&config.Credentials.Spotify.ClientID, env.SpotifyClientID)
	setString(&config.Credentials.Spotify.ClientSecret, env.SpotifyClientSecret)
	setString(&config.Credentials.Spotify.AccessToken, env.SpotifyAccessToken)
	setString(&config.Credentials.Spotify.Market, env.SpotifyMarket)
	setString(&config.Database.Path, env.DatabasePath)
	setString(&config.Server.Host, env.ServerHost)
	setString(&config.Cache.Backend, env.CacheBackend)
	setString(&config.Cache.ValkeyURL, env.ValkeyURL)

	if env.ServerPort > 0 {
		config.Server.Port = env.ServerPort
	}
	if env.SearchConcurrency > 0 {
		config.Search.Concurrency = env.SearchConcurrency
	}
	if env.SearchRateLimit > 0 {
		config.Search.RateLimit = env.SearchRateLimit
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// HasSpotifyCredentials reports whether client credentials are configured with non-placeholder values.
func (c *Config) HasSpotifyCredentials() bool {
	id, secret := c.Credentials.Spotify.ClientID, c.Credentials.Spotify.ClientSecret
	return id != "" && secret != "" && id != "your_spotify_client_id"
}
