package burnoutapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
	apperrors "github.com/yanqian/preburn-dashboard/pkg/errors"
)

const (
	defaultBaseURL = "http://127.0.0.1:8000"
	defaultTimeout = 10 * time.Second
)

// Client fetches risk, forecast and actions from the burnout API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an API client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	root := strings.TrimSpace(baseURL)
	if root == "" {
		root = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(root, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type riskPayload struct {
	Date            *string                 `json:"date"`
	RiskScore       *float64                `json:"risk_score"`
	RiskLevel       *dashboard.RiskLevel    `json:"risk_level"`
	TopContributors []dashboard.Contributor `json:"top_contributors"`
}

func (p riskPayload) validate() error {
	switch {
	case p.Date == nil || strings.TrimSpace(*p.Date) == "":
		return errors.New("missing date")
	case p.RiskScore == nil:
		return errors.New("missing risk_score")
	case p.RiskLevel == nil:
		return errors.New("missing risk_level")
	}
	switch *p.RiskLevel {
	case dashboard.RiskLow, dashboard.RiskMedium, dashboard.RiskHigh:
		return nil
	default:
		return fmt.Errorf("unknown risk_level %q", *p.RiskLevel)
	}
}

// Risk fetches today's risk snapshot. Payloads without a date, score or known level are
// rejected.
func (c *Client) Risk(ctx context.Context) (dashboard.RiskSnapshot, error) {
	var payload riskPayload
	if err := c.getJSON(ctx, "/api/risk", nil, &payload); err != nil {
		return dashboard.RiskSnapshot{}, err
	}
	if err := payload.validate(); err != nil {
		return dashboard.RiskSnapshot{}, upstreamError("invalid /api/risk response", err)
	}
	return dashboard.RiskSnapshot{
		Date:            *payload.Date,
		RiskScore:       *payload.RiskScore,
		RiskLevel:       *payload.RiskLevel,
		TopContributors: payload.TopContributors,
	}, nil
}

// Forecast fetches the projected risk series.
func (c *Client) Forecast(ctx context.Context) ([]float64, error) {
	var payload struct {
		Forecast []float64 `json:"forecast"`
	}
	if err := c.getJSON(ctx, "/api/forecast", nil, &payload); err != nil {
		return nil, err
	}
	if payload.Forecast == nil {
		return []float64{}, nil
	}
	return payload.Forecast, nil
}

// Actions fetches recommended actions. Day 0 asks for today's actions. An object without
// an actions field is an empty set.
func (c *Client) Actions(ctx context.Context, day int) (dashboard.ActionSet, error) {
	var query url.Values
	if day > 0 {
		query = url.Values{"day": []string{strconv.Itoa(day)}}
	}
	var set dashboard.ActionSet
	if err := c.getJSON(ctx, "/api/actions", query, &set); err != nil {
		return dashboard.ActionSet{}, err
	}
	if set.Actions == nil {
		set.Actions = []dashboard.Action{}
	}
	return set, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return upstreamError(path+" request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return upstreamError(fmt.Sprintf("%s request error: status=%d body=%s", path, resp.StatusCode, string(payload)), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return upstreamError("read "+path+" response", err)
	}
	// every endpoint answers with an object; null or a bare array is malformed
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		return upstreamError("decode "+path+" response", errors.New("expected a JSON object"))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return upstreamError("decode "+path+" response", err)
	}
	return nil
}

func upstreamError(message string, err error) error {
	return apperrors.Wrap(apperrors.CodeUpstream, message, err)
}

var _ dashboard.Fetcher = (*Client)(nil)
