package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yanqian/preburn-dashboard/internal/infra/burnoutapi"
	"github.com/yanqian/preburn-dashboard/internal/infra/config"
	"github.com/yanqian/preburn-dashboard/internal/interface/tui"
	"github.com/yanqian/preburn-dashboard/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "preburn tui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.TUI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log := logger.NewWithWriter(logFile)

	client := burnoutapi.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	log.Info("tui starting", "upstream", cfg.Upstream.BaseURL)

	program := tea.NewProgram(tui.New(ctx, client, log), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
