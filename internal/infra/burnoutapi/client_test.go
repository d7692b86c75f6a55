package burnoutapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
	apperrors "github.com/yanqian/preburn-dashboard/pkg/errors"
)

func TestClientRisk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/risk", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"date":"2024-01-01","risk_score":0.82,"risk_level":"High","top_contributors":[{"name":"Workload","weight":0.6}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second)
	snapshot, err := client.Risk(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2024-01-01", snapshot.Date)
	require.Equal(t, 0.82, snapshot.RiskScore)
	require.Equal(t, dashboard.RiskHigh, snapshot.RiskLevel)
	require.Equal(t, []dashboard.Contributor{{Name: "Workload", Weight: 0.6}}, snapshot.TopContributors)
}

func TestClientForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/forecast", r.URL.Path)
		_, _ = w.Write([]byte(`{"forecast":[0.1,0.4,0.9]}`))
	}))
	defer srv.Close()

	values, err := NewClient(srv.URL, time.Second).Forecast(context.Background())
	require.NoError(t, err)
	require.Equal(t, []float64{0.1, 0.4, 0.9}, values)
}

func TestClientForecastMissingFieldIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	values, err := NewClient(srv.URL, time.Second).Forecast(context.Background())
	require.NoError(t, err)
	require.NotNil(t, values)
	require.Empty(t, values)
}

func TestClientActionsQuery(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/actions", r.URL.Path)
		queries = append(queries, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"actions":[{"title":"Take a walk","explanation":"Move for 10 minutes."}],"source":"rules"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	today, err := client.Actions(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, "rules", today.Source)
	require.Len(t, today.Actions, 1)

	day3, err := client.Actions(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, "Take a walk", day3.Actions[0].Title)

	require.Equal(t, []string{"", "day=3"}, queries)
}

func TestClientActionsMissingFieldIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"source":"rules"}`))
	}))
	defer srv.Close()

	set, err := NewClient(srv.URL, time.Second).Actions(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, set.Actions)
	require.Empty(t, set.Actions)
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "non-success status", status: http.StatusBadGateway, body: `{"detail":"down"}`, message: "status=502"},
		{name: "malformed json", status: http.StatusOK, body: `<html>oops</html>`, message: "decode /api/actions response"},
		{name: "wrong shape", status: http.StatusOK, body: `{"actions":"nope"}`, message: "decode /api/actions response"},
		{name: "null body", status: http.StatusOK, body: `null`, message: "expected a JSON object"},
		{name: "array body", status: http.StatusOK, body: `[]`, message: "expected a JSON object"},
		{name: "empty body", status: http.StatusOK, body: ``, message: "expected a JSON object"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Actions(context.Background(), 2)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.message)
			require.True(t, apperrors.IsCode(err, apperrors.CodeUpstream))
		})
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Risk(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "/api/risk request failed")
}

func TestClientRiskRejectsIncompletePayloads(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "null", body: `null`, message: "expected a JSON object"},
		{name: "empty object", body: `{}`, message: "missing date"},
		{name: "missing score", body: `{"date":"2024-01-01","risk_level":"Low"}`, message: "missing risk_score"},
		{name: "missing level", body: `{"date":"2024-01-01","risk_score":0.2}`, message: "missing risk_level"},
		{name: "unknown level", body: `{"date":"2024-01-01","risk_score":0.2,"risk_level":"Severe"}`, message: `unknown risk_level "Severe"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Risk(context.Background())
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.message)
			require.True(t, apperrors.IsCode(err, apperrors.CodeUpstream))
		})
	}
}

func TestClientRiskZeroScoreIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"date":"2024-01-01","risk_score":0,"risk_level":"Low"}`))
	}))
	defer srv.Close()

	snapshot, err := NewClient(srv.URL, time.Second).Risk(context.Background())
	require.NoError(t, err)
	require.Zero(t, snapshot.RiskScore)
	require.Equal(t, dashboard.RiskLow, snapshot.RiskLevel)
}

func TestControllerTreatsNullPayloadsAsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/forecast":
			_, _ = w.Write([]byte(`{"forecast":[0.2,0.4,0.6]}`))
		default:
			_, _ = w.Write([]byte(`null`))
		}
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := dashboard.NewController(context.Background(), NewClient(srv.URL, time.Second), logger, nil)
	defer ctrl.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ctrl.Mount()
	require.NoError(t, ctrl.Wait(ctx))
	_, err := ctrl.Select(2)
	require.NoError(t, err)
	require.NoError(t, ctrl.Wait(ctx))

	state := ctrl.State()
	require.Nil(t, state.Risk)
	require.False(t, dashboard.Present(state).HasRisk)
	require.Equal(t, dashboard.StatusError, state.Status)
	require.Equal(t, dashboard.ActionsErrorMessage, state.ErrorMessage)
	require.Empty(t, state.Actions.Actions)
}
