package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/rickgao/host-agent/internal/model"
)

// New returns the Manager for the running OS.
func New(cfg Config, logger *slog.Logger) Manager {
	return NewForOS(runtime.GOOS, cfg, nil, logger)
}

// NewForOS returns the Manager for goos using runner.
func NewForOS(goos string, cfg Config, runner Runner, logger *slog.Logger) Manager {
	switch goos {
	case "linux":
		return NewSystemd(cfg, runner, logger)
	case "windows":
		return NewSC(cfg, runner, logger)
	default:
		return unsupported{goos: goos}
	}
}

type unsupported struct {
	goos string
}

func (u unsupported) err() error {
	return fmt.Errorf("%s: %w", u.goos, ErrUnsupportedPlatform)
}

func (u unsupported) List(context.Context) ([]model.ServiceInfo, error) {
	return nil, u.err()
}

func (u unsupported) Status(context.Context, string) (model.ServiceStatus, error) {
	return model.ServiceStatus{}, u.err()
}

func (u unsupported) Restart(context.Context, string) (model.RestartResult, error) {
	return model.RestartResult{}, u.err()
}
