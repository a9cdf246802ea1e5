package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/curvesale/internal/app"
	"github.com/rovshanmuradov/curvesale/internal/cli"
	"github.com/rovshanmuradov/curvesale/internal/config"
	"github.com/rovshanmuradov/curvesale/internal/logger"
	"github.com/rovshanmuradov/curvesale/internal/ui"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to config file")
	dsn := flag.String("dsn", "", "Override storage.dsn")
	refresh := flag.Duration("refresh", 2*time.Second, "State refresh interval")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dsn != "" {
		cfg.Storage.DSN = *dsn
	}
	// консоль занята дашбордом
	cfg.Log.Console = "none"

	logs := logger.NewBuffer(500)
	a, err := app.New(ctx, cfg, app.WithLogCores(logs.Core(zap.InfoLevel)))
	if err != nil {
		return err
	}
	defer a.Close()

	opts := []ui.Option{ui.WithLogBuffer(logs), ui.WithRefresh(*refresh)}
	if a.Audit != nil {
		opts = append(opts, ui.WithTrail(a.Audit))
	} else {
		feed := ui.NewEventFeed(256)
		a.Bus.SubscribeAll(feed)
		opts = append(opts, ui.WithEventFeed(feed))
	}

	a.Logger.Info("Starting dashboard", zap.String("dsn", cfg.Storage.DSN))
	runner := ui.NewRunner(a.Logger.Logger, func() tea.Model {
		return ui.NewDashboard(a.Program, a.Policy, cli.Version, opts...)
	}, tea.WithAltScreen(), tea.WithoutSignalHandler())

	return runner.Run(ctx)
}
