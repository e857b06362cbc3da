package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.MusicBrainz.UserAgent != "mbid-to-lidarr/1.0 (you@example.com)" {
			t.Errorf("unexpected default user agent %s", config.MusicBrainz.UserAgent)
		}

		if config.MusicBrainz.MinScore != 80 {
			t.Errorf("expected min score 80, got %d", config.MusicBrainz.MinScore)
		}

		if config.MusicBrainz.SearchLimit != 5 {
			t.Errorf("expected search limit 5, got %d", config.MusicBrainz.SearchLimit)
		}

		if config.Lidarr.URL != "http://localhost:8686" {
			t.Errorf("expected lidarr url http://localhost:8686, got %s", config.Lidarr.URL)
		}

		if config.Lidarr.Monitor != "all" {
			t.Errorf("expected monitor option all, got %s", config.Lidarr.Monitor)
		}

		if config.Files.MBIDs != "output/mbids.txt" {
			t.Errorf("expected mbids path output/mbids.txt, got %s", config.Files.MBIDs)
		}

		if config.Database.Path != "./mbli.db" {
			t.Errorf("expected database path ./mbli.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Lidarr.RootFolder != defaultConfig.Lidarr.RootFolder {
			t.Errorf("created config root folder doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[musicbrainz]
user_agent = "test-agent/0.1 (ops@example.org)"
base_url = "https://musicbrainz.example/ws/2"
request_interval_seconds = 0.5
min_score = 90
search_limit = 3

[lidarr]
url = "http://lidarr.local:8686"
api_key = "abc123"
root_folder = "/music"
quality_profile_id = 2
metadata_profile_id = 3
monitor = "missing"
search_missing = true

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:9090/callback"

[files]
artists = "names.txt"
mbids = "ids.txt"
report = "report.tsv"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.MusicBrainz.MinScore != 90 {
			t.Errorf("expected min score 90, got %d", config.MusicBrainz.MinScore)
		}

		if config.MusicBrainz.Interval != 0.5 {
			t.Errorf("expected interval 0.5, got %f", config.MusicBrainz.Interval)
		}

		if config.Lidarr.APIKey != "abc123" {
			t.Errorf("expected api key abc123, got %s", config.Lidarr.APIKey)
		}

		if !config.Lidarr.SearchMissing {
			t.Error("expected search_missing true")
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Files.Artists != "names.txt" {
			t.Errorf("expected artists file names.txt, got %s", config.Files.Artists)
		}
	})

	t.Run("SaveConfig round trips", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.Lidarr.APIKey = "persisted_key"
		config.Credentials.Spotify.AccessToken = "persisted_token"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if loaded.Lidarr.APIKey != "persisted_key" {
			t.Errorf("expected persisted api key, got %s", loaded.Lidarr.APIKey)
		}
		if loaded.Credentials.Spotify.AccessToken != "persisted_token" {
			t.Errorf("expected persisted access token, got %s", loaded.Credentials.Spotify.AccessToken)
		}
	})

	t.Run("SaveConfig rejects nil config", func(t *testing.T) {
		err := SaveConfig(filepath.Join(t.TempDir(), "config.toml"), nil)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Run("overrides values from environment", func(t *testing.T) {
			t.Setenv("LIDARR_URL", "http://env.lidarr:8686")
			t.Setenv("LIDARR_API_KEY", "env_key")
			t.Setenv("MB_REQUEST_INTERVAL_SECONDS", "2.5")
			t.Setenv("QUALITY_PROFILE_ID", "7")

			config := DefaultConfig()
			if err := config.ApplyEnv(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if config.Lidarr.URL != "http://env.lidarr:8686" {
				t.Errorf("expected env lidarr url, got %s", config.Lidarr.URL)
			}
			if config.Lidarr.APIKey != "env_key" {
				t.Errorf("expected env api key, got %s", config.Lidarr.APIKey)
			}
			if config.MusicBrainz.Interval != 2.5 {
				t.Errorf("expected interval 2.5, got %f", config.MusicBrainz.Interval)
			}
			if config.Lidarr.QualityProfileID != 7 {
				t.Errorf("expected quality profile 7, got %d", config.Lidarr.QualityProfileID)
			}
		})

		t.Run("leaves config untouched when unset", func(t *testing.T) {
			config := DefaultConfig()
			before := config.Lidarr.URL
			if err := config.ApplyEnv(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Lidarr.URL != before {
				t.Errorf("expected url unchanged, got %s", config.Lidarr.URL)
			}
		})

		t.Run("rejects malformed numeric values", func(t *testing.T) {
			t.Setenv("MB_REQUEST_INTERVAL_SECONDS", "not-a-number")

			config := DefaultConfig()
			err := config.ApplyEnv()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("rejects malformed profile ids", func(t *testing.T) {
			t.Setenv("METADATA_PROFILE_ID", "three")

			config := DefaultConfig()
			err := config.ApplyEnv()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("RequestInterval converts seconds to duration", func(t *testing.T) {
		config := DefaultConfig()
		config.MusicBrainz.Interval = 1.5

		if got := config.RequestInterval(); got != 1500*time.Millisecond {
			t.Errorf("expected 1.5s, got %v", got)
		}
	})
}

func TestSpotifyConfigTokens(t *testing.T) {
	t.Run("Update copies token fields", func(t *testing.T) {
		cfg := SpotifyConfig{RefreshToken: "old_refresh"}
		expiry := time.Now().Add(time.Hour)

		err := cfg.Update(&oauth2.Token{
			AccessToken:  "new_access",
			RefreshToken: "new_refresh",
			Expiry:       expiry,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.AccessToken != "new_access" {
			t.Errorf("expected access token updated, got %s", cfg.AccessToken)
		}
		if cfg.RefreshToken != "new_refresh" {
			t.Errorf("expected refresh token updated, got %s", cfg.RefreshToken)
		}
		if !cfg.TokenExpiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, cfg.TokenExpiry)
		}
	})

	t.Run("Update keeps refresh token when response omits it", func(t *testing.T) {
		cfg := SpotifyConfig{RefreshToken: "old_refresh"}

		if err := cfg.Update(&oauth2.Token{AccessToken: "new_access"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.RefreshToken != "old_refresh" {
			t.Errorf("expected refresh token preserved, got %s", cfg.RefreshToken)
		}
	})

	t.Run("Update rejects nil token", func(t *testing.T) {
		cfg := SpotifyConfig{}
		if err := cfg.Update(nil); err == nil {
			t.Fatal("expected error for nil token")
		}
	})

	t.Run("Token returns nil when nothing stored", func(t *testing.T) {
		cfg := SpotifyConfig{}
		if tok := cfg.Token(); tok != nil {
			t.Errorf("expected nil token, got %+v", tok)
		}
	})

	t.Run("Token rebuilds stored token", func(t *testing.T) {
		expiry := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		cfg := SpotifyConfig{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenExpiry:  expiry,
		}

		tok := cfg.Token()
		if tok == nil {
			t.Fatal("expected token, got nil")
		}
		if tok.AccessToken != "access" || tok.RefreshToken != "refresh" {
			t.Errorf("unexpected token fields: %+v", tok)
		}
		if !tok.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, tok.Expiry)
		}
	})
}
