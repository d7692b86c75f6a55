package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/yanqian/preburn-dashboard/internal/infra/config"
)

// UpstreamProxy forwards /api/* requests to the burnout API so browsers can use
// relative paths.
type UpstreamProxy struct {
	proxy  *httputil.ReverseProxy
	logger *slog.Logger
}

// NewUpstreamProxy builds a reverse proxy rooted at the configured upstream base URL.
func NewUpstreamProxy(cfg *config.Config, logger *slog.Logger) (*UpstreamProxy, error) {
	target, err := url.Parse(strings.TrimRight(cfg.Upstream.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}
	p := &UpstreamProxy{logger: logger.With("component", "http.proxy")}
	p.proxy = &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
		},
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: cfg.Upstream.Timeout,
		},
		ErrorHandler: p.handleError,
	}
	return p, nil
}

func (p *UpstreamProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.proxy.ServeHTTP(w, r)
}

func (p *UpstreamProxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error("upstream request failed", "path", r.URL.Path, "error", err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write([]byte(`{"error":{"code":"upstream_error","message":"upstream unavailable"}}`))
}
