package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/dealerdesk-backend/pkg/config"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type probeFunc func(ctx context.Context, tables ...string) ([]string, error)

func (f probeFunc) MissingTables(ctx context.Context, tables ...string) ([]string, error) {
	return f(ctx, tables...)
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	handler := HealthReady(cfg, nil, stubPinger{}, stubPinger{err: errors.New("connection refused")})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"redis":"unavailable"`) {
		t.Fatalf("expected redis check in details: %s", resp.Body.String())
	}
	if resp.Header().Get("X-Dealer-Env") != "dev" {
		t.Fatalf("expected env header")
	}
}

func TestHealthSchemaListsMissingTables(t *testing.T) {
	probe := probeFunc(func(ctx context.Context, tables ...string) ([]string, error) {
		return []string{"contracts"}, nil
	})
	resp := httptest.NewRecorder()
	HealthSchema(probe, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/schema", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, `"provisioned":false`) || !strings.Contains(body, `"contracts"`) {
		t.Fatalf("unexpected body %s", body)
	}
}
