package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

type stubExchanger struct {
	token *oauth2.Token
	err   error
	codes []string
}

func (s *stubExchanger) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	s.codes = append(s.codes, code)
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

func callbackRequest(query string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/callback?"+query, nil)
}

func TestOAuthHandler_ServeHTTP(t *testing.T) {
	t.Run("exchanges the code and delivers the token", func(t *testing.T) {
		exchanger := &stubExchanger{token: &oauth2.Token{AccessToken: "access-123"}}
		handler := NewOAuthHandler(exchanger, "state-abc")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, callbackRequest("state=state-abc&code=code-xyz"))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Spotify Connected") {
			t.Errorf("expected success page, got %q", rec.Body.String())
		}
		if len(exchanger.codes) != 1 || exchanger.codes[0] != "code-xyz" {
			t.Errorf("expected exchange of code-xyz, got %v", exchanger.codes)
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token == nil || result.Token.AccessToken != "access-123" {
			t.Errorf("expected delivered token, got %+v", result.Token)
		}
	})

	t.Run("rejects a state mismatch", func(t *testing.T) {
		exchanger := &stubExchanger{token: &oauth2.Token{AccessToken: "access-123"}}
		handler := NewOAuthHandler(exchanger, "state-abc")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, callbackRequest("state=forged&code=code-xyz"))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if len(exchanger.codes) != 0 {
			t.Errorf("expected no exchange, got %v", exchanger.codes)
		}

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "invalid state parameter") {
			t.Errorf("expected state error, got %v", result.Error())
		}
	})

	t.Run("reports the provider error when the code is missing", func(t *testing.T) {
		handler := NewOAuthHandler(&stubExchanger{}, "state-abc")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, callbackRequest("state=state-abc&error=access_denied&error_description=User+denied"))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected provider error, got %v", result.Error())
		}
	})

	t.Run("surfaces an exchange failure", func(t *testing.T) {
		cause := fmt.Errorf("spotify unreachable")
		handler := NewOAuthHandler(&stubExchanger{err: cause}, "state-abc")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, callbackRequest("state=state-abc&code=code-xyz"))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}

		result := <-handler.Result()
		if !errors.Is(result.Error(), cause) {
			t.Errorf("expected wrapped exchange error, got %v", result.Error())
		}
	})

	t.Run("rejects a replayed callback", func(t *testing.T) {
		exchanger := &stubExchanger{token: &oauth2.Token{AccessToken: "access-123"}}
		handler := NewOAuthHandler(exchanger, "state-abc")

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, callbackRequest("state=state-abc&code=code-xyz"))
		second := httptest.NewRecorder()
		handler.ServeHTTP(second, callbackRequest("state=state-abc&code=code-replay"))

		if second.Code != http.StatusBadRequest {
			t.Errorf("expected status 400 on replay, got %d", second.Code)
		}
		if !strings.Contains(second.Body.String(), "Callback already processed") {
			t.Errorf("unexpected replay body: %q", second.Body.String())
		}
		if len(exchanger.codes) != 1 {
			t.Errorf("expected a single exchange, got %v", exchanger.codes)
		}
	})

	t.Run("closes the result channel after delivery", func(t *testing.T) {
		handler := NewOAuthHandler(&stubExchanger{token: &oauth2.Token{}}, "state-abc")
		handler.ServeHTTP(httptest.NewRecorder(), callbackRequest("state=state-abc&code=code-xyz"))

		if _, ok := <-handler.Result(); !ok {
			t.Fatal("expected a delivered result")
		}
		if _, ok := <-handler.Result(); ok {
			t.Error("expected channel to be closed after the single result")
		}
	})
}

type multiRouteHandler struct {
	hits []string
}

func (m *multiRouteHandler) Routes() []string { return []string{"/a", "/b"} }

func (m *multiRouteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.hits = append(m.hits, r.URL.Path)
	w.WriteHeader(http.StatusNoContent)
}

func TestBasicRouter(t *testing.T) {
	t.Run("filters methods on Handle", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405 for POST, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200 for GET, got %d", rec.Code)
		}
	})

	t.Run("registers every route a Handler reports", func(t *testing.T) {
		router := NewBasicRouter()
		handler := &multiRouteHandler{}
		router.Handler(handler)

		for _, path := range []string{"/a", "/b"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusNoContent {
				t.Errorf("expected %s to be served, got %d", path, rec.Code)
			}
		}
		if len(handler.hits) != 2 {
			t.Errorf("expected 2 hits, got %v", handler.hits)
		}
	})

	t.Run("runs middleware in registration order", func(t *testing.T) {
		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(tag("outer"), tag("inner"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			order = append(order, "handler")
			w.WriteHeader(http.StatusOK)
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		want := []string{"outer", "inner", "handler"}
		if len(order) != len(want) {
			t.Fatalf("expected order %v, got %v", want, order)
		}
		for i := range want {
			if order[i] != want[i] {
				t.Fatalf("expected order %v, got %v", want, order)
			}
		}
	})
}
