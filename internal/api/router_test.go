package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"arbitrage/internal/arbitrage"
	"arbitrage/internal/quotestore"
	"arbitrage/internal/stability"
	"arbitrage/internal/status"
	"arbitrage/pkg/crypto"
)

func testDeps(t *testing.T, tokenHash string) (Dependencies, *arbitrage.Engine) {
	t.Helper()
	store := quotestore.New()
	stab := stability.New(time.Minute)
	engine := arbitrage.New(store, stab, func(string) float64 { return 0.001 }, arbitrage.DefaultConfig(), nil, nil, nil)
	statuses := status.New([]string{"okx", "bybit"}, nil)

	return Dependencies{
		Engine:       engine,
		Statuses:     statuses,
		Hub:          nil,
		Log:          nil,
		TokenHash:    tokenHash,
		FilterConfig: arbitrage.DefaultFilterConfig(),
	}, engine
}

func TestRouter_HealthIsAlwaysOpen(t *testing.T) {
	deps, _ := testDeps(t, "")
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_OpportunitiesOpenWithoutGate(t *testing.T) {
	deps, _ := testDeps(t, "")
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/opportunities", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with no gate configured, got %d", rec.Code)
	}
}

func TestRouter_OpportunitiesRequireTokenWhenGated(t *testing.T) {
	hash, err := crypto.HashPassword("secret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	deps, _ := testDeps(t, hash)
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/opportunities", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/opportunities", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with the correct token, got %d", rec.Code)
	}
}

func TestRouter_StatusAndFiltering(t *testing.T) {
	deps, _ := testDeps(t, "")
	router := NewRouter(deps)

	for _, path := range []string{"/api/v1/status", "/api/v1/filtering"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	deps, _ := testDeps(t, "")
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from the scrape endpoint, got %d", rec.Code)
	}
}
