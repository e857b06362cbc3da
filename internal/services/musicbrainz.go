// MusicBrainz web service client for artist search
//
// Endpoint reference: https://musicbrainz.org/doc/MusicBrainz_API/Search
package services

import (
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
	"golang.org/x/time/rate"
)

const (
	mbDefaultBaseURL   = "https://musicbrainz.org/ws/2"
	mbDefaultUserAgent = "mbid-to-lidarr/1.0 (you@example.com)"
	mbDefaultLimit     = 5
)

// MBAlias represents an alternate name attached to an artist.
type MBAlias struct {
	Name     string `json:"name"`
	SortName string `json:"sort-name"`
	Type     string `json:"type"`
}

// MBArtist represents an artist document from the MusicBrainz search index.
//
// Score is the search relevance (0-100) assigned by the index, not a
// property of the artist itself.
type MBArtist struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SortName       string    `json:"sort-name"`
	Type           string    `json:"type"`
	Country        string    `json:"country"`
	Score          int       `json:"score"`
	Disambiguation string    `json:"disambiguation"`
	Aliases        []MBAlias `json:"aliases"`
}

type artistSearchResult struct {
	Artists []MBArtist `json:"artists"`
}

// MusicBrainzService queries the MusicBrainz web service for artists.
// Requests are paced by a [rate.Limiter] so batch runs stay inside the
// one-request-per-second budget MusicBrainz asks of anonymous clients.
type MusicBrainzService struct {
	baseURL     string
	userAgent   string
	searchLimit int
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewMusicBrainzService creates a search client from the given configuration.
// Zero-valued fields fall back to the documented MusicBrainz defaults.
func NewMusicBrainzService(cfg shared.MusicBrainzConfig, client *http.Client) *MusicBrainzService {
	if client == nil {
		client = http.DefaultClient
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = mbDefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = mbDefaultUserAgent
	}

	searchLimit := cfg.SearchLimit
	if searchLimit <= 0 {
		searchLimit = mbDefaultLimit
	}

	pace := rate.Inf
	if cfg.Interval > 0 {
		pace = rate.Every(time.Duration(cfg.Interval * float64(time.Second)))
	}

	return &MusicBrainzService{
		baseURL:     baseURL,
		userAgent:   userAgent,
		searchLimit: searchLimit,
		httpClient:  client,
		limiter:     rate.NewLimiter(pace, 1),
	}
}

// SearchArtist queries the artist search endpoint for name and returns the
// candidate documents in index order.
//
// 429 and 503 responses are retried indefinitely after honoring Retry-After;
// MusicBrainz throttles aggressively and a batch run should wait rather than
// fail. Cancel the context to abandon the wait.
func (m *MusicBrainzService) SearchArtist(ctx context.Context, name string) ([]MBArtist, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", buildArtistQuery(name))
	params.Set("fmt", "json")
	params.Set("limit", strconv.Itoa(m.searchLimit))
	params.Set("inc", "aliases")
	searchURL := m.baseURL + "/artist/?" + params.Encode()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", m.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := m.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("musicbrainz request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			retryAfter := resp.Header.Get("Retry-After")
			resp.Body.Close()
			if err := sleepFn(ctx, retryAfterSeconds(retryAfter)); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return nil, fmt.Errorf("musicbrainz search failed: %w", &StatusError{
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(body)),
			})
		}

		var result artistSearchResult
		err = json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return result.Artists, nil
	}
}

// retryAfterSeconds interprets a Retry-After header as whole seconds,
// defaulting to 2 when absent or malformed.
func retryAfterSeconds(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds < 0 {
		seconds = 2
	}
	return time.Duration(seconds) * time.Second
}

// Characters with syntactic meaning in Lucene queries. Single & and | pass
// through unescaped; only the doubled forms && and || are operators.
const luceneSpecials = `+-!(){}[]^"~*?:\/`

func luceneEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(luceneSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// buildArtistQuery targets the artist field but also matches the bare phrase,
// which catches artists indexed under aliases.
func buildArtistQuery(name string) string {
	escaped := luceneEscape(name)
	return fmt.Sprintf("artist:\"%s\" OR \"%s\"", escaped, escaped)
}
