package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rickgao/host-agent/internal/model"
)

// SC controls Windows services through sc.exe.
type SC struct {
	cfg    Config
	run    Runner
	logger *slog.Logger
}

// NewSC creates an sc.exe-backed Manager. A nil runner uses ExecRunner.
func NewSC(cfg Config, runner Runner, logger *slog.Logger) *SC {
	if runner == nil {
		runner = ExecRunner
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SC{cfg: cfg, run: runner, logger: logger}
}

// List returns every service with its state.
func (s *SC) List(ctx context.Context) ([]model.ServiceInfo, error) {
	out, err := run(ctx, s.cfg, s.run, "sc", "query", "type=", "service", "state=", "all")
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	return parseSCQuery(out), nil
}

// Status runs sc query for one service.
func (s *SC) Status(ctx context.Context, name string) (model.ServiceStatus, error) {
	if name == "" {
		return model.ServiceStatus{}, ErrEmptyName
	}

	out, err := run(ctx, s.cfg, s.run, "sc", "query", name)
	if err != nil {
		if IsCommandError(err) {
			return notRunning(name, out), nil
		}
		return model.ServiceStatus{}, fmt.Errorf("query %s: %w", name, err)
	}

	return model.ServiceStatus{
		Name:          name,
		IsRunning:     model.Ptr(strings.Contains(out, "RUNNING")),
		StatusMessage: model.Ptr(out),
	}, nil
}

// Restart stops then starts the service.
func (s *SC) Restart(ctx context.Context, name string) (model.RestartResult, error) {
	if name == "" {
		return model.RestartResult{}, ErrEmptyName
	}

	for _, verb := range []string{"stop", "start"} {
		out, err := run(ctx, s.cfg, s.run, "sc", verb, name)
		if err != nil {
			if IsCommandError(err) {
				s.logger.Warn("service restart refused", "service", name, "step", verb)
				return failedRestart(name, out), nil
			}
			return model.RestartResult{}, fmt.Errorf("%s %s: %w", verb, name, err)
		}
	}

	s.logger.Info("service restarted", "service", name)
	return model.RestartResult{Name: name, Success: true, Message: restartedMessage}, nil
}

// parseSCQuery parses the block output of `sc query`. Each SERVICE_NAME line
// opens a record; the STATE line supplies its state word.
func parseSCQuery(out string) []model.ServiceInfo {
	services := []model.ServiceInfo{}
	var current *model.ServiceInfo

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SERVICE_NAME:"):
			if current != nil {
				services = append(services, *current)
			}
			current = &model.ServiceInfo{Name: strings.TrimSpace(strings.TrimPrefix(line, "SERVICE_NAME:"))}
		case strings.HasPrefix(line, "STATE") && current != nil:
			current.State = scState(line)
		}
	}
	if current != nil {
		services = append(services, *current)
	}
	return services
}

// scState extracts "RUNNING" from "STATE              : 4  RUNNING".
func scState(line string) string {
	value := line[strings.LastIndex(line, ":")+1:]
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
