// Lidarr v1 API client
//
// Endpoint reference: https://lidarr.audio/docs/api/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
)

const (
	lidarrDefaultURL  = "http://localhost:8686"
	lidarrMaxRetries  = 3
	lidarrBaseBackoff = 2 * time.Second
)

// LidarrSystemStatus describes the Lidarr instance, returned by the status
// endpoint. Used as a connectivity and credential check.
type LidarrSystemStatus struct {
	AppName string `json:"appName"`
	Version string `json:"version"`
}

// LidarrRootFolder represents a root folder configured on the instance.
type LidarrRootFolder struct {
	ID         int    `json:"id"`
	Path       string `json:"path"`
	Accessible bool   `json:"accessible"`
}

// LidarrProfile represents a quality or metadata profile.
type LidarrProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// LidarrImage represents artwork attached to an artist.
type LidarrImage struct {
	CoverType string `json:"coverType"`
	URL       string `json:"url"`
}

// LidarrArtist represents an artist as returned by the artist and lookup
// endpoints. Lookup results carry a zero ID until the artist is added.
type LidarrArtist struct {
	ID                int           `json:"id,omitempty"`
	ArtistName        string        `json:"artistName"`
	ForeignArtistID   string        `json:"foreignArtistId"`
	Disambiguation    string        `json:"disambiguation,omitempty"`
	QualityProfileID  int           `json:"qualityProfileId,omitempty"`
	MetadataProfileID int           `json:"metadataProfileId,omitempty"`
	Monitored         bool          `json:"monitored"`
	Path              string        `json:"path,omitempty"`
	Images            []LidarrImage `json:"images,omitempty"`
	Tags              []int         `json:"tags,omitempty"`
}

// LidarrAddOptions controls what Lidarr does right after an artist is added.
type LidarrAddOptions struct {
	Monitor                string `json:"monitor"`
	SearchForMissingAlbums bool   `json:"searchForMissingAlbums"`
}

// LidarrAddRequest is the payload for creating an artist.
//
// Images and Tags must be non-nil so they serialize as empty arrays; Lidarr
// rejects null where it expects a collection.
type LidarrAddRequest struct {
	ForeignArtistID   string           `json:"foreignArtistId"`
	ArtistName        string           `json:"artistName"`
	QualityProfileID  int              `json:"qualityProfileId"`
	MetadataProfileID int              `json:"metadataProfileId"`
	Images            []LidarrImage    `json:"images"`
	Monitored         bool             `json:"monitored"`
	RootFolderPath    string           `json:"rootFolderPath"`
	AddOptions        LidarrAddOptions `json:"addOptions"`
	Tags              []int            `json:"tags"`
}

// LidarrService talks to a Lidarr instance's v1 API using API key auth.
type LidarrService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewLidarrService creates a client for the instance at cfg.URL.
// The API key is required; there is no anonymous access to Lidarr.
func NewLidarrService(cfg shared.LidarrConfig, client *http.Client) (*LidarrService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: lidarr api key", shared.ErrMissingCredentials)
	}
	if client == nil {
		client = http.DefaultClient
	}

	baseURL := strings.TrimRight(cfg.URL, "/")
	if baseURL == "" {
		baseURL = lidarrDefaultURL
	}

	return &LidarrService{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: client,
	}, nil
}

// do issues a request with up to lidarrMaxRetries retries on 429/503
// responses and transport errors, then decodes the body into result.
//
// Retryable responses honor Retry-After when present and otherwise back off
// exponentially from lidarrBaseBackoff. Any other non-2xx status fails
// immediately with a wrapped [StatusError].
func (l *LidarrService) do(ctx context.Context, method, path string, body any, result any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var lastStatus *StatusError
	var lastErr error

	for attempt := 0; attempt <= lidarrMaxRetries; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, l.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("X-Api-Key", l.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := l.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if attempt >= lidarrMaxRetries {
				break
			}
			if err := sleepFn(ctx, backoffWait("", attempt)); err != nil {
				return err
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			retryAfter := resp.Header.Get("Retry-After")
			resp.Body.Close()
			lastStatus = &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
			if attempt >= lidarrMaxRetries {
				break
			}
			if err := sleepFn(ctx, backoffWait(retryAfter, attempt)); err != nil {
				return err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("lidarr %s %s: %w", method, path, &StatusError{
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(respBody)),
			})
		}

		if result == nil {
			resp.Body.Close()
			return nil
		}
		err = json.NewDecoder(resp.Body).Decode(result)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	if lastStatus != nil {
		return fmt.Errorf("lidarr %s %s: retries exhausted: %w", method, path, lastStatus)
	}
	return fmt.Errorf("lidarr %s %s: retries exhausted: %w", method, path, lastErr)
}

// backoffWait picks the retry delay: Retry-After seconds when the server
// sent a usable value, exponential backoff from the attempt number otherwise.
func backoffWait(retryAfter string, attempt int) time.Duration {
	if retryAfter != "" {
		if seconds, err := strconv.ParseFloat(strings.TrimSpace(retryAfter), 64); err == nil && seconds >= 0 {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return lidarrBaseBackoff * (1 << attempt)
}

// SystemStatus fetches instance information.
func (l *LidarrService) SystemStatus(ctx context.Context) (*LidarrSystemStatus, error) {
	var status LidarrSystemStatus
	if err := l.do(ctx, http.MethodGet, "/api/v1/system/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// RootFolders lists the root folders configured on the instance.
func (l *LidarrService) RootFolders(ctx context.Context) ([]LidarrRootFolder, error) {
	var folders []LidarrRootFolder
	if err := l.do(ctx, http.MethodGet, "/api/v1/rootFolder", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// QualityProfiles lists the quality profiles configured on the instance.
func (l *LidarrService) QualityProfiles(ctx context.Context) ([]LidarrProfile, error) {
	var profiles []LidarrProfile
	if err := l.do(ctx, http.MethodGet, "/api/v1/qualityprofile", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// MetadataProfiles lists the metadata profiles configured on the instance.
func (l *LidarrService) MetadataProfiles(ctx context.Context) ([]LidarrProfile, error) {
	var profiles []LidarrProfile
	if err := l.do(ctx, http.MethodGet, "/api/v1/metadataprofile", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Artists retrieves every artist in the library.
func (l *LidarrService) Artists(ctx context.Context) ([]LidarrArtist, error) {
	var artists []LidarrArtist
	if err := l.do(ctx, http.MethodGet, "/api/v1/artist", nil, &artists); err != nil {
		return nil, err
	}
	return artists, nil
}

// ExistingForeignIDs returns the set of MusicBrainz IDs already in the
// library, keyed for membership tests.
func (l *LidarrService) ExistingForeignIDs(ctx context.Context) (map[string]struct{}, error) {
	artists, err := l.Artists(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(artists))
	for _, a := range artists {
		if a.ForeignArtistID != "" {
			ids[a.ForeignArtistID] = struct{}{}
		}
	}
	return ids, nil
}

// Lookup searches Lidarr's metadata source for artists matching term.
// Prefixing the term with "lidarr:" followed by an MBID looks up that exact
// artist.
func (l *LidarrService) Lookup(ctx context.Context, term string) ([]LidarrArtist, error) {
	endpoint := "/api/v1/artist/lookup?term=" + url.QueryEscape(term)
	var results []LidarrArtist
	if err := l.do(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// AddArtist creates an artist in the library.
func (l *LidarrService) AddArtist(ctx context.Context, add LidarrAddRequest) (*LidarrArtist, error) {
	var created LidarrArtist
	if err := l.do(ctx, http.MethodPost, "/api/v1/artist", add, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
