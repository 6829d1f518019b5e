package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestJudgeIdentity(t *testing.T) {
	var seen string
	handler := JudgeIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = JudgeFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("identity reaches the handler", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Judge-ID", "judge-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
		if seen != "judge-1" {
			t.Errorf("expected judge-1 in context, got %q", seen)
		}
	})

	t.Run("oversized identity", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Judge-ID", strings.Repeat("j", maxJudgeIDLength+1))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestJudgeFromOutsideMiddleware(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := JudgeFrom(req.Context()); got != "" {
		t.Errorf("expected empty identity outside the middleware, got %q", got)
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		header   string
		wantCode int
	}{
		{"correct token", "secret", "Bearer secret", http.StatusOK},
		{"wrong token", "secret", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "secret", "", http.StatusUnauthorized},
		{"empty token disables auth", "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AdminAuthMiddleware(tt.token)(okHandler())
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(3)(okHandler())

	send := func(judge string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Judge-ID", judge)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 3; i++ {
		if w := send("judge-a"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
	over := send("judge-a")
	if over.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 over the limit, got %d", over.Code)
	}
	if over.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After on a limited response")
	}

	// Windows are tracked per judge.
	if w := send("judge-b"); w.Code != http.StatusOK {
		t.Errorf("other judge should not be limited, got %d", w.Code)
	}
}
