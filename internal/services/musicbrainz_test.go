package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
	tu "github.com/jackedtechbro/mbid-to-lidarr/internal/testing"
	"golang.org/x/time/rate"
)

// stubSleep replaces the retry delay with a recorder for the duration of a test.
func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	orig := sleepFn
	slept := &[]time.Duration{}
	sleepFn = func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return ctx.Err()
	}
	t.Cleanup(func() { sleepFn = orig })
	return slept
}

func TestMusicBrainzService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Empty Config Uses Defaults", func(t *testing.T) {
			srv := NewMusicBrainzService(shared.MusicBrainzConfig{}, nil)

			if srv.baseURL != mbDefaultBaseURL {
				t.Errorf("expected default base URL, got %s", srv.baseURL)
			}
			if srv.userAgent != mbDefaultUserAgent {
				t.Errorf("expected default user agent, got %s", srv.userAgent)
			}
			if srv.searchLimit != mbDefaultLimit {
				t.Errorf("expected default search limit %d, got %d", mbDefaultLimit, srv.searchLimit)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if srv.limiter.Limit() != rate.Inf {
				t.Error("expected unlimited pacing for zero interval")
			}
		})

		t.Run("With Custom Config", func(t *testing.T) {
			cfg := shared.MusicBrainzConfig{
				BaseURL:     "http://example.com/ws/2/",
				UserAgent:   "test-agent/1.0",
				Interval:    1.0,
				SearchLimit: 10,
			}
			client := &http.Client{}
			srv := NewMusicBrainzService(cfg, client)

			if srv.baseURL != "http://example.com/ws/2" {
				t.Errorf("expected trailing slash trimmed, got %s", srv.baseURL)
			}
			if srv.userAgent != "test-agent/1.0" {
				t.Errorf("expected custom user agent, got %s", srv.userAgent)
			}
			if srv.searchLimit != 10 {
				t.Errorf("expected search limit 10, got %d", srv.searchLimit)
			}
			if srv.httpClient != client {
				t.Error("expected custom client to be used")
			}
			if srv.limiter.Limit() != rate.Every(time.Second) {
				t.Errorf("expected one request per second, got %v", srv.limiter.Limit())
			}
		})
	})

	t.Run("Lucene Escaping", func(t *testing.T) {
		cases := []struct {
			name string
			in   string
			want string
		}{
			{"Plain Name", "Coldplay", "Coldplay"},
			{"Slash", "AC/DC", `AC\/DC`},
			{"Exclamation", "Panic! At The Disco", `Panic\! At The Disco`},
			{"Parentheses", "(Sandy) Alex G", `\(Sandy\) Alex G`},
			{"Single Ampersand Untouched", "Simon & Garfunkel", "Simon & Garfunkel"},
			{"Single Pipe Untouched", "Gorillaz | Live", "Gorillaz | Live"},
			{"Quotes", `The "Band"`, `The \"Band\"`},
			{"Plus And Minus", "A+B-C", `A\+B\-C`},
			{"Colon", "Re:Stage", `Re\:Stage`},
			{"Brackets And Braces", "[a]{b}", `\[a\]\{b\}`},
			{"Backslash", `a\b`, `a\\b`},
			{"Wildcards", "wh?t*", `wh\?t\*`},
			{"Caret And Tilde", "x^y~z", `x\^y\~z`},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if got := luceneEscape(tc.in); got != tc.want {
					t.Errorf("expected %q, got %q", tc.want, got)
				}
			})
		}
	})

	t.Run("Build Artist Query", func(t *testing.T) {
		got := buildArtistQuery("AC/DC")
		want := `artist:"AC\/DC" OR "AC\/DC"`
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("SearchArtist", func(t *testing.T) {
		t.Run("Sends Query Parameters And Headers", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/artist/" {
					t.Errorf("expected path '/artist/', got %s", r.URL.Path)
				}
				q := r.URL.Query()
				if q.Get("query") != `artist:"Coldplay" OR "Coldplay"` {
					t.Errorf("unexpected query param: %s", q.Get("query"))
				}
				if q.Get("fmt") != "json" {
					t.Errorf("expected fmt 'json', got %s", q.Get("fmt"))
				}
				if q.Get("limit") != "5" {
					t.Errorf("expected limit '5', got %s", q.Get("limit"))
				}
				if q.Get("inc") != "aliases" {
					t.Errorf("expected inc 'aliases', got %s", q.Get("inc"))
				}
				if r.Header.Get("User-Agent") != "test-agent/1.0" {
					t.Errorf("expected custom user agent, got %s", r.Header.Get("User-Agent"))
				}
				if r.Header.Get("Accept") != "application/json" {
					t.Errorf("expected Accept 'application/json', got %s", r.Header.Get("Accept"))
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"artists":[
					{"id":"cc197bad-dc9c-440d-a5b5-d52ba2e14234","name":"Coldplay","sort-name":"Coldplay","type":"Group","country":"GB","score":100,"aliases":[{"name":"コールドプレイ","sort-name":"コールドプレイ","type":"Artist name"}]},
					{"id":"00000000-0000-0000-0000-000000000001","name":"Coldplay Tribute","score":55}
				]}`))
			}))
			defer server.Close()

			srv := NewMusicBrainzService(shared.MusicBrainzConfig{
				BaseURL:   server.URL,
				UserAgent: "test-agent/1.0",
			}, nil)

			artists, err := srv.SearchArtist(context.Background(), "Coldplay")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(artists) != 2 {
				t.Fatalf("expected 2 artists, got %d", len(artists))
			}
			if artists[0].ID != "cc197bad-dc9c-440d-a5b5-d52ba2e14234" {
				t.Errorf("unexpected artist ID: %s", artists[0].ID)
			}
			if artists[0].Score != 100 {
				t.Errorf("expected score 100, got %d", artists[0].Score)
			}
			if len(artists[0].Aliases) != 1 || artists[0].Aliases[0].Name != "コールドプレイ" {
				t.Errorf("expected alias to be decoded, got %v", artists[0].Aliases)
			}
			if artists[1].Country != "" {
				t.Errorf("expected empty country, got %s", artists[1].Country)
			}
		})

		t.Run("Honors Retry After On 429", func(t *testing.T) {
			slept := stubSleep(t)

			hits := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits++
				if hits == 1 {
					w.Header().Set("Retry-After", "7")
					w.WriteHeader(http.StatusTooManyRequests)
					return
				}
				w.Write([]byte(`{"artists":[]}`))
			}))
			defer server.Close()

			srv := NewMusicBrainzService(shared.MusicBrainzConfig{BaseURL: server.URL}, nil)
			artists, err := srv.SearchArtist(context.Background(), "anyone")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if artists == nil || len(artists) != 0 {
				t.Errorf("expected empty result, got %v", artists)
			}
			if hits != 2 {
				t.Errorf("expected 2 requests, got %d", hits)
			}
			if len(*slept) != 1 || (*slept)[0] != 7*time.Second {
				t.Errorf("expected one 7s wait, got %v", *slept)
			}
		})

		t.Run("Retries 503 With Default Delay", func(t *testing.T) {
			slept := stubSleep(t)

			hits := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits++
				if hits <= 2 {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				w.Write([]byte(`{"artists":[]}`))
			}))
			defer server.Close()

			srv := NewMusicBrainzService(shared.MusicBrainzConfig{BaseURL: server.URL}, nil)
			if _, err := srv.SearchArtist(context.Background(), "anyone"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if hits != 3 {
				t.Errorf("expected 3 requests, got %d", hits)
			}
			for i, d := range *slept {
				if d != 2*time.Second {
					t.Errorf("wait %d: expected default 2s, got %v", i, d)
				}
			}
		})

		t.Run("Returns StatusError On Client Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("query error"))
			}))
			defer server.Close()

			srv := NewMusicBrainzService(shared.MusicBrainzConfig{BaseURL: server.URL}, nil)
			_, err := srv.SearchArtist(context.Background(), "anyone")
			if err == nil {
				t.Fatal("expected error for 400 response")
			}

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.StatusCode != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", statusErr.StatusCode)
			}
			if statusErr.Body != "query error" {
				t.Errorf("expected body 'query error', got %s", statusErr.Body)
			}
			if statusErr.Retryable() {
				t.Error("expected 400 to not be retryable")
			}
		})

		t.Run("Propagates Network Errors", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			srv := NewMusicBrainzService(shared.MusicBrainzConfig{BaseURL: "http://example.com"}, client)
			_, err := srv.SearchArtist(context.Background(), "anyone")
			if err == nil {
				t.Fatal("expected error for failed request")
			}
			if !strings.Contains(err.Error(), "musicbrainz request failed") {
				t.Errorf("expected request failure error, got %v", err)
			}
		})

		t.Run("Surfaces Body Read Failures", func(t *testing.T) {
			resp := &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       &tu.FCloser{},
			}
			client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

			srv := NewMusicBrainzService(shared.MusicBrainzConfig{BaseURL: "http://example.com"}, client)
			_, err := srv.SearchArtist(context.Background(), "anyone")
			if err == nil {
				t.Fatal("expected error for unreadable body")
			}
			if !strings.Contains(err.Error(), "failed to decode response") {
				t.Errorf("expected decode error, got %v", err)
			}
		})

		t.Run("Stops Waiting When Context Canceled", func(t *testing.T) {
			orig := sleepFn
			sleepFn = func(ctx context.Context, d time.Duration) error {
				return context.Canceled
			}
			t.Cleanup(func() { sleepFn = orig })

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			}))
			defer server.Close()

			srv := NewMusicBrainzService(shared.MusicBrainzConfig{BaseURL: server.URL}, nil)
			_, err := srv.SearchArtist(context.Background(), "anyone")
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			srv := NewMusicBrainzService(shared.MusicBrainzConfig{BaseURL: "http://example.com"}, nil)
			if _, err := srv.SearchArtist(ctx, "anyone"); err == nil {
				t.Error("expected error for canceled context")
			}
		})
	})

	t.Run("Retry After Parsing", func(t *testing.T) {
		cases := []struct {
			name   string
			header string
			want   time.Duration
		}{
			{"Whole Seconds", "7", 7 * time.Second},
			{"Missing Header", "", 2 * time.Second},
			{"Malformed Header", "soon", 2 * time.Second},
			{"Fractional Rejected", "1.5", 2 * time.Second},
			{"Negative Rejected", "-3", 2 * time.Second},
			{"Zero", "0", 0},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if got := retryAfterSeconds(tc.header); got != tc.want {
					t.Errorf("expected %v, got %v", tc.want, got)
				}
			})
		}
	})
}
