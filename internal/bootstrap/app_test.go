package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
	"github.com/yanqian/preburn-dashboard/internal/infra/config"
)

type shutdownRecorder struct {
	dashboard.Service
	calls int
}

func (s *shutdownRecorder) Shutdown() { s.calls++ }

func TestAppRunStopsOnContextCancel(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "127.0.0.1:0"}}
	svc := &shutdownRecorder{}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, svc)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, app.Run(ctx))
	require.Equal(t, 1, svc.calls)
}

func TestAppRunReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := &config.Config{HTTP: config.HTTPConfig{Address: ln.Addr().String()}}
	svc := &shutdownRecorder{}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, svc)

	require.Error(t, app.Run(context.Background()))
	require.Equal(t, 1, svc.calls)
}
