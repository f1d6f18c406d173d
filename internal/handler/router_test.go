package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-notes/web/internal/config"
	"github.com/zhouzirui/z-notes/web/internal/metrics"
	"github.com/zhouzirui/z-notes/web/internal/service/api"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Addr: ":0", LoginURL: "/login"},
		API:     config.APIConfig{BaseURL: baseURL, Timeout: time.Second},
		Session: config.SessionConfig{CookieName: "token"},
		Display: config.DisplayConfig{Location: time.UTC},
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRouterServesPageWithBearerHeader(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected request id to be forwarded")
		}
		switch r.URL.Path {
		case "/api/users/verify":
			w.Write([]byte(`{"user":{"name":"Jane Doe"}}`))
		case "/api/posts":
			w.Write([]byte(`{"posts":[]}`))
		}
	}))
	defer backend.Close()

	cfg := testConfig(backend.URL)
	m := metrics.New()
	router := NewRouter(cfg, api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, api.WithMetrics(m)), quietLogger(), m)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Jane's Notes") {
		t.Fatalf("unexpected body:\n%s", rr.Body.String())
	}

	mr := httptest.NewRecorder()
	router.ServeHTTP(mr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(mr.Body.String(), `notes_api_requests_total{operation="verify",status="200"} 1`) {
		t.Fatalf("expected verify metric, got:\n%s", mr.Body.String())
	}
}

func TestRouterHealthz(t *testing.T) {
	router := NewRouter(testConfig("http://127.0.0.1:1"), api.NewClient("http://127.0.0.1:1", time.Second), quietLogger(), nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS header on health endpoint")
	}

	mr := httptest.NewRecorder()
	router.ServeHTTP(mr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if mr.Code != http.StatusNotFound {
		t.Fatalf("metrics must be absent when disabled, got %d", mr.Code)
	}
}

func TestRouterEventsForAnonymousVisitor(t *testing.T) {
	router := NewRouter(testConfig("http://127.0.0.1:1"), api.NewClient("http://127.0.0.1:1", time.Second), quietLogger(), metrics.New())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events", nil))

	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if !strings.Contains(rr.Body.String(), `"phase":"anonymous"`) || !strings.Contains(rr.Body.String(), "event: end") {
		t.Fatalf("unexpected stream:\n%s", rr.Body.String())
	}
}

func TestRouterExpiresRejectedCookie(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	cfg := testConfig(backend.URL)
	router := NewRouter(cfg, api.NewClient(cfg.API.BaseURL, cfg.API.Timeout), quietLogger(), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "stale"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if !strings.Contains(rr.Body.String(), "Token verification failed: 401 Unauthorized") {
		t.Fatalf("expected verification error, got:\n%s", rr.Body.String())
	}
	var expired bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "token" && c.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Fatal("expected the rejected token cookie to be expired")
	}
}
