package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
	"github.com/yanqian/preburn-dashboard/internal/infra/config"
	apperrors "github.com/yanqian/preburn-dashboard/pkg/errors"
	"github.com/yanqian/preburn-dashboard/pkg/metrics"
)

func TestRouter_OpenSession(t *testing.T) {
	svc := &stubDashboard{
		openFn: func(ctx context.Context, req dashboard.OpenRequest) (dashboard.SessionView, error) {
			require.True(t, req.Wait)
			return dashboard.SessionView{ID: "s1", View: dashboard.View{Percentage: 82, RiskLevel: dashboard.RiskHigh}}, nil
		},
	}

	rec := performRequest(http.MethodPost, "/dashboard/sessions?wait=true", "", newRouterUnderTest(t, svc, "http://127.0.0.1:1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got dashboard.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "s1", got.ID)
	require.Equal(t, 82, got.View.Percentage)
}

func TestRouter_SelectDayAccepted(t *testing.T) {
	svc := &stubDashboard{
		selectFn: func(ctx context.Context, req dashboard.SelectRequest) (dashboard.SessionView, error) {
			require.Equal(t, "s1", req.SessionID)
			require.Equal(t, 3, req.Day)
			require.False(t, req.Wait)
			return dashboard.SessionView{ID: "s1", View: dashboard.View{SelectedDay: 3, Status: dashboard.StatusLoading}}, nil
		},
	}

	rec := performRequest(http.MethodPost, "/dashboard/sessions/s1/select", `{"day":3}`, newRouterUnderTest(t, svc, "http://127.0.0.1:1"))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var got dashboard.SessionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 3, got.View.SelectedDay)
	require.Equal(t, dashboard.StatusLoading, got.View.Status)
}

func TestRouter_SelectDayErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{name: "missing day", body: `{}`, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "wrong type", body: `{"day":"two"}`, status: http.StatusBadRequest, code: "invalid_request"},
		{name: "out of range", body: `{"day":0}`, err: apperrors.Wrap(apperrors.CodeInvalidInput, "day must be >= 1, got 0", nil), status: http.StatusBadRequest, code: "invalid_request"},
		{name: "unknown session", body: `{"day":1}`, err: apperrors.Wrap(apperrors.CodeSessionNotFound, "session not found", nil), status: http.StatusNotFound, code: "session_not_found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubDashboard{
				selectFn: func(ctx context.Context, req dashboard.SelectRequest) (dashboard.SessionView, error) {
					return dashboard.SessionView{}, tc.err
				},
			}
			rec := performRequest(http.MethodPost, "/dashboard/sessions/s1/select", tc.body, newRouterUnderTest(t, svc, "http://127.0.0.1:1"))
			require.Equal(t, tc.status, rec.Code)
			errBody := decodeErrorBody(t, rec.Body.Bytes())
			require.Equal(t, tc.code, errBody["error"]["code"])
			require.NotEmpty(t, errBody["error"]["message"])
		})
	}
}

func TestRouter_InteractionsAndClose(t *testing.T) {
	svc := &stubDashboard{
		interactionsFn: func(ctx context.Context, id string, limit int) ([]dashboard.Interaction, error) {
			require.Equal(t, 5, limit)
			return []dashboard.Interaction{{SessionID: id, Day: 2, Outcome: dashboard.OutcomeError}}, nil
		},
	}
	server := newRouterUnderTest(t, svc, "http://127.0.0.1:1")

	rec := performRequest(http.MethodGet, "/dashboard/sessions/s1/interactions?limit=5", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Interactions []dashboard.Interaction `json:"interactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Interactions, 1)
	require.Equal(t, dashboard.OutcomeError, body.Interactions[0].Outcome)

	rec = performRequest(http.MethodGet, "/dashboard/sessions/s1/interactions?limit=-1", "", server)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(http.MethodDelete, "/dashboard/sessions/s1", "", server)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []string{"s1"}, svc.closed)
}

func TestRouter_ProxyForwardsToUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/actions", r.URL.Path)
		require.Equal(t, "3", r.URL.Query().Get("day"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"actions":[{"title":"Take a walk","explanation":"..."}]}`))
	}))
	defer upstream.Close()

	rec := performRequest(http.MethodGet, "/api/actions?day=3", "", newRouterUnderTest(t, &stubDashboard{}, upstream.URL))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"actions":[{"title":"Take a walk","explanation":"..."}]}`, rec.Body.String())
}

func TestRouter_ProxyUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := upstream.URL
	upstream.Close()

	rec := performRequest(http.MethodGet, "/api/risk", "", newRouterUnderTest(t, &stubDashboard{}, target))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "upstream_error", errBody["error"]["code"])
}

func TestRouter_ProxyRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"forecast":[0.1,0.4,0.9]}`))
	}))
	defer upstream.Close()

	cfg := testConfig(upstream.URL)
	cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}
	server := buildServer(t, cfg, &stubDashboard{})

	rec := performRequest(http.MethodGet, "/api/forecast", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int32(2), calls.Load())
	require.JSONEq(t, `{"forecast":[0.1,0.4,0.9]}`, rec.Body.String())
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	server := newRouterUnderTest(t, &stubDashboard{}, "http://127.0.0.1:1")

	rec := performRequest(http.MethodGet, "/healthz", "", server)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(http.MethodGet, "/metrics", "", server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `preburn_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.HTTP.AllowedOrigins = []string{"https://dash.example.com"}
	server := buildServer(t, cfg, &stubDashboard{})

	req := httptest.NewRequest(http.MethodOptions, "/dashboard/sessions", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://dash.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig(upstreamURL string) *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		Upstream: config.UpstreamConfig{BaseURL: upstreamURL, Timeout: time.Second},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newRouterUnderTest(t *testing.T, svc dashboard.Service, upstreamURL string) *http.Server {
	t.Helper()
	return buildServer(t, testConfig(upstreamURL), svc)
}

func buildServer(t *testing.T, cfg *config.Config, svc dashboard.Service) *http.Server {
	t.Helper()
	logger := newTestLogger()
	proxy, err := NewUpstreamProxy(cfg, logger)
	require.NoError(t, err)
	collector, err := metrics.NewCollector()
	require.NoError(t, err)
	return NewRouter(cfg, NewHandler(svc, logger), proxy, collector)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubDashboard struct {
	openFn         func(ctx context.Context, req dashboard.OpenRequest) (dashboard.SessionView, error)
	getFn          func(ctx context.Context, id string) (dashboard.SessionView, error)
	selectFn       func(ctx context.Context, req dashboard.SelectRequest) (dashboard.SessionView, error)
	interactionsFn func(ctx context.Context, id string, limit int) ([]dashboard.Interaction, error)
	closed         []string
}

func (s *stubDashboard) Open(ctx context.Context, req dashboard.OpenRequest) (dashboard.SessionView, error) {
	if s.openFn != nil {
		return s.openFn(ctx, req)
	}
	return dashboard.SessionView{}, nil
}

func (s *stubDashboard) Get(ctx context.Context, id string) (dashboard.SessionView, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return dashboard.SessionView{}, nil
}

func (s *stubDashboard) Select(ctx context.Context, req dashboard.SelectRequest) (dashboard.SessionView, error) {
	if s.selectFn != nil {
		return s.selectFn(ctx, req)
	}
	return dashboard.SessionView{}, nil
}

func (s *stubDashboard) Interactions(ctx context.Context, id string, limit int) ([]dashboard.Interaction, error) {
	if s.interactionsFn != nil {
		return s.interactionsFn(ctx, id, limit)
	}
	return nil, nil
}

func (s *stubDashboard) Close(ctx context.Context, id string) error {
	s.closed = append(s.closed, id)
	return nil
}

func (s *stubDashboard) Shutdown() {}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
