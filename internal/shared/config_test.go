package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./tunename.db" {
			t.Errorf("expected database path ./tunename.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Search.RoundTimeout() != 30*time.Second {
			t.Errorf("expected round timeout 30s, got %v", config.Search.RoundTimeout())
		}

		if config.Search.DefaultCount != 20 {
			t.Errorf("expected default search count 20, got %d", config.Search.DefaultCount)
		}

		if config.Cache.Backend != "sqlite" {
			t.Errorf("expected sqlite cache backend, got %s", config.Cache.Backend)
		}

		if config.Cache.TTL() != 24*time.Hour {
			t.Errorf("expected cache ttl 24h, got %v", config.Cache.TTL())
		}

		if config.Playlist.Name != "Tune That Name" {
			t.Errorf("expected playlist name Tune That Name, got %s", config.Playlist.Name)
		}

		if config.HasSpotifyCredentials() {
			t.Error("placeholder credentials should not count as configured")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[search]
concurrency = 2
min_song_fraction = 0.5
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected port 8080, got %d", config.Server.Port)
		}
		if config.Search.Concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", config.Search.Concurrency)
		}
		if config.Search.MinSongFraction != 0.5 {
			t.Errorf("expected min song fraction 0.5, got %v", config.Search.MinSongFraction)
		}
		if config.Search.DefaultCount != 20 {
			t.Errorf("unset values should keep defaults, got default_count %d", config.Search.DefaultCount)
		}
		if !config.HasSpotifyCredentials() {
			t.Error("expected spotify credentials to be configured")
		}
	})

	t.Run("LoadConfig with invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[database\npath ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("LoadConfig with missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Playlist.Name = "Friends Mix"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Playlist.Name != "Friends Mix" {
			t.Errorf("expected playlist name Friends Mix, got %s", loaded.Playlist.Name)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("TUNENAME_SPOTIFY_CLIENT_ID", "env_id")
		t.Setenv("TUNENAME_SERVER_PORT", "9999")
		t.Setenv("TUNENAME_CACHE_BACKEND", "none")

		config := DefaultConfig()
		if err := ApplyEnv(config, filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Fatalf("failed to apply env: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "env_id" {
			t.Errorf("expected client id from env, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Server.Port != 9999 {
			t.Errorf("expected port 9999, got %d", config.Server.Port)
		}
		if config.Cache.Backend != "none" {
			t.Errorf("expected cache backend none, got %s", config.Cache.Backend)
		}
		if config.Database.Path != "./tunename.db" {
			t.Errorf("unset env should keep config values, got %s", config.Database.Path)
		}
	})

	t.Run("ApplyEnv reads dotenv file", func(t *testing.T) {
		dotenv := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(dotenv, []byte("TUNENAME_DATABASE_PATH=/tmp/dotenv.db\n"), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("TUNENAME_DATABASE_PATH") })

		config := DefaultConfig()
		if err := ApplyEnv(config, dotenv); err != nil {
			t.Fatalf("failed to apply env: %v", err)
		}
		if config.Database.Path != "/tmp/dotenv.db" {
			t.Errorf("expected database path from .env, got %s", config.Database.Path)
		}
	})

	t.Run("ApplyEnv rejects malformed numbers", func(t *testing.T) {
		t.Setenv("TUNENAME_SERVER_PORT", "not-a-port")

		if err := ApplyEnv(DefaultConfig(), ""); err == nil {
			t.Error("expected error for malformed port")
		}
	})
}
