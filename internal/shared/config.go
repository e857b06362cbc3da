package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	MusicBrainz MusicBrainzConfig `toml:"musicbrainz"`
	Lidarr      LidarrConfig      `toml:"lidarr"`
	Credentials CredentialsConfig `toml:"credentials"`
	Files       FilesConfig       `toml:"files"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// MusicBrainzConfig contains MusicBrainz search settings.
//
// UserAgent is required by the MusicBrainz API terms; identify your
// deployment and a contact address. Interval is the minimum number of
// seconds between requests, MinScore the relevance score below which a
// search is treated as having no match.
type MusicBrainzConfig struct {
	UserAgent   string  `toml:"user_agent"`
	BaseURL     string  `toml:"base_url"`
	Interval    float64 `toml:"request_interval_seconds"`
	MinScore    int     `toml:"min_score"`
	SearchLimit int     `toml:"search_limit"`
}

// LidarrConfig contains Lidarr connection and import settings.
type LidarrConfig struct {
	URL               string `toml:"url"`
	APIKey            string `toml:"api_key"`
	RootFolder        string `toml:"root_folder"`
	QualityProfileID  int    `toml:"quality_profile_id"`
	MetadataProfileID int    `toml:"metadata_profile_id"`
	Monitor           string `toml:"monitor"`
	SearchMissing     bool   `toml:"search_missing"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and persisted tokens.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	TokenExpiry  time.Time `toml:"token_expiry"`
}

// Update copies the fields of an [oauth2.Token] into the config.
func (s *SpotifyConfig) Update(tok *oauth2.Token) error {
	if tok == nil {
		return fmt.Errorf("token cannot be nil")
	}
	s.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		s.RefreshToken = tok.RefreshToken
	}
	s.TokenExpiry = tok.Expiry
	return nil
}

// Token rebuilds the persisted [oauth2.Token]. Returns nil when no token
// has been stored yet.
func (s *SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" && s.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Expiry:       s.TokenExpiry,
		TokenType:    "Bearer",
	}
}

// FilesConfig contains default paths for the pipeline's input and output files.
type FilesConfig struct {
	Artists string `toml:"artists"`
	MBIDs   string `toml:"mbids"`
	Report  string `toml:"report"`
}

// DatabaseConfig contains history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains OAuth callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// SaveConfig writes the config as TOML to the specified path.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
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

// ApplyEnv overrides config values from the environment. Variable names
// follow the tool's .env conventions; unset variables leave the config
// untouched.
func (c *Config) ApplyEnv() error {
	stringVars := []struct {
		key  string
		dest *string
	}{
		{"MUSICBRAINZ_UA", &c.MusicBrainz.UserAgent},
		{"LIDARR_URL", &c.Lidarr.URL},
		{"LIDARR_API_KEY", &c.Lidarr.APIKey},
		{"ROOT_FOLDER", &c.Lidarr.RootFolder},
		{"MONITOR_OPTION", &c.Lidarr.Monitor},
		{"SPOTIFY_CLIENT_ID", &c.Credentials.Spotify.ClientID},
		{"SPOTIFY_CLIENT_SECRET", &c.Credentials.Spotify.ClientSecret},
		{"SPOTIFY_REDIRECT_URI", &c.Credentials.Spotify.RedirectURI},
		{"ARTISTS_FILE", &c.Files.Artists},
		{"MBIDS_OUTPUT", &c.Files.MBIDs},
		{"LIDARR_REPORT", &c.Files.Report},
	}
	for _, v := range stringVars {
		if val := os.Getenv(v.key); val != "" {
			*v.dest = val
		}
	}

	if val := os.Getenv("MB_REQUEST_INTERVAL_SECONDS"); val != "" {
		interval, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("%w: MB_REQUEST_INTERVAL_SECONDS=%q", ErrInvalidConfig, val)
		}
		c.MusicBrainz.Interval = interval
	}

	intVars := []struct {
		key  string
		dest *int
	}{
		{"QUALITY_PROFILE_ID", &c.Lidarr.QualityProfileID},
		{"METADATA_PROFILE_ID", &c.Lidarr.MetadataProfileID},
	}
	for _, v := range intVars {
		val := os.Getenv(v.key)
		if val == "" {
			continue
		}
		id, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, v.key, val)
		}
		*v.dest = id
	}

	return nil
}

// RequestInterval returns the MusicBrainz politeness interval as a [time.Duration].
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.MusicBrainz.Interval * float64(time.Second))
}
