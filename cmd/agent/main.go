package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/host-agent/internal/agent"
	"github.com/rickgao/host-agent/internal/collector"
	"github.com/rickgao/host-agent/internal/command"
	"github.com/rickgao/host-agent/internal/config"
	"github.com/rickgao/host-agent/internal/connection"
	"github.com/rickgao/host-agent/internal/health"
	"github.com/rickgao/host-agent/internal/service"
	"github.com/rickgao/host-agent/internal/version"
	"github.com/rickgao/host-agent/internal/watch"
)

func main() {
	configPath := flag.String("config", "configs/agent.yaml", "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Bootstrap logger until the configured one is available
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "config", *configPath, "error", err)
		os.Exit(1)
	}

	logger = buildLogger(os.Stdout, cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting agent",
		"version", version.Version,
		"commit", version.Commit,
		"system_id", cfg.Agent.SystemID,
		"url", cfg.Agent.URL,
		"interval", cfg.Agent.Interval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	var interrupted atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Debug("received shutdown signal", "signal", sig)
		interrupted.Store(true)
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("agent stopped", "error", err, "fatal", connection.IsFatal(err))
		os.Exit(1)
	}

	if interrupted.Load() {
		logger.Info("Interrupted by user; exiting.")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	watched := watch.New()

	services := service.New(service.Config{
		CommandTimeout: cfg.Services.CommandTimeout.Std(),
		DisableSudo:    cfg.Services.DisableSudo,
	}, logger.With("component", "service"))

	dispatcher := command.NewDispatcher(command.Config{
		RestartRate:  cfg.Services.RestartRate,
		RestartBurst: cfg.Services.RestartBurst,
	}, services, watched, logger.With("component", "command"))

	hosts := collector.New(collector.Config{
		AgentVersion:    version.Version,
		PublicIPURL:     cfg.Network.PublicIPURL,
		PublicIPTimeout: cfg.Network.PublicIPTimeout.Std(),
		PublicIPTTL:     cfg.Network.PublicIPTTL.Std(),
		PublicIPRetries: cfg.Network.PublicIPRetries,
		DisablePublicIP: cfg.Network.DisablePublicIP,
		LocalIPProbe:    cfg.Network.LocalIPProbe,
	}, logger.With("component", "collector"))

	session := agent.NewSession(agent.Config{
		SystemID: cfg.Agent.SystemID,
		Interval: cfg.Agent.Interval.Std(),
	}, hosts, services, watched, dispatcher, logger.With("component", "session"))

	clientCfg := connection.DefaultClientConfig()
	clientCfg.URL = cfg.Agent.URL
	clientCfg.HandshakeTimeout = cfg.Connection.HandshakeTimeout.Std()
	clientCfg.WriteTimeout = cfg.Connection.WriteTimeout.Std()
	clientCfg.PingInterval = cfg.Connection.PingInterval.Std()
	clientCfg.PingTimeout = cfg.Connection.PingTimeout.Std()
	clientCfg.ReadLimit = cfg.Connection.ReadLimit

	manager := connection.NewManager(connection.ManagerConfig{
		Client:         clientCfg,
		ReconnectDelay: connection.Backoff(cfg.Agent.Interval.Std()),
	}, session, logger.With("component", "connection"))

	status := health.NewStatus(cfg.Agent.SystemID, health.Sources{
		Connection: manager,
		Commands:   dispatcher,
		Watch:      watched,
	})
	session.SetRecorder(status)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return manager.Run(gctx)
	})

	if cfg.Health.Addr != "" {
		srv := health.NewServer(cfg.Health.Addr, status, logger.With("component", "health"))
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	return g.Wait()
}

// buildLogger creates the process logger from the logging section.
func buildLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
