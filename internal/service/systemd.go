package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rickgao/host-agent/internal/model"
)

const systemdRunningMarker = "Active: active (running)"

// Systemd controls services through systemctl.
type Systemd struct {
	cfg    Config
	run    Runner
	logger *slog.Logger
}

// NewSystemd creates a systemctl-backed Manager. A nil runner uses ExecRunner.
func NewSystemd(cfg Config, runner Runner, logger *slog.Logger) *Systemd {
	if runner == nil {
		runner = ExecRunner
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Systemd{cfg: cfg, run: runner, logger: logger}
}

// List returns every service unit, loaded or not.
func (s *Systemd) List(ctx context.Context) ([]model.ServiceInfo, error) {
	out, err := run(ctx, s.cfg, s.run,
		"systemctl", "list-units", "--type=service", "--all", "--no-pager", "--no-legend")
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return parseListUnits(out), nil
}

// Status runs systemctl status. A non-zero exit means the unit is not
// running; its output becomes the status message.
func (s *Systemd) Status(ctx context.Context, name string) (model.ServiceStatus, error) {
	if name == "" {
		return model.ServiceStatus{}, ErrEmptyName
	}

	out, err := run(ctx, s.cfg, s.run, "systemctl", "status", name, "--no-pager")
	if err != nil {
		if IsCommandError(err) {
			return notRunning(name, out), nil
		}
		return model.ServiceStatus{}, fmt.Errorf("status %s: %w", name, err)
	}

	return model.ServiceStatus{
		Name:          name,
		IsRunning:     model.Ptr(strings.Contains(out, systemdRunningMarker)),
		StatusMessage: model.Ptr(out),
	}, nil
}

// Restart runs systemctl restart, through sudo unless disabled.
func (s *Systemd) Restart(ctx context.Context, name string) (model.RestartResult, error) {
	if name == "" {
		return model.RestartResult{}, ErrEmptyName
	}

	args := []string{"systemctl", "restart", name}
	if !s.cfg.DisableSudo {
		args = append([]string{"sudo"}, args...)
	}

	out, err := run(ctx, s.cfg, s.run, args[0], args[1:]...)
	if err != nil {
		if IsCommandError(err) {
			s.logger.Warn("service restart refused", "service", name, "output", strings.TrimSpace(out))
			return failedRestart(name, out), nil
		}
		return model.RestartResult{}, fmt.Errorf("restart %s: %w", name, err)
	}

	s.logger.Info("service restarted", "service", name)
	return model.RestartResult{Name: name, Success: true, Message: restartedMessage}, nil
}

// parseListUnits parses `systemctl list-units --no-legend` output. Lines with
// fewer than four columns are skipped; a leading failure bullet is ignored.
func parseListUnits(out string) []model.ServiceInfo {
	services := []model.ServiceInfo{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && (fields[0] == "●" || fields[0] == "*") {
			fields = fields[1:]
		}
		if len(fields) < 4 {
			continue
		}
		services = append(services, model.ServiceInfo{
			Name:   fields[0],
			Load:   fields[1],
			Active: fields[2],
			Sub:    fields[3],
		})
	}
	return services
}

func notRunning(name, out string) model.ServiceStatus {
	return model.ServiceStatus{
		Name:          name,
		IsRunning:     model.Ptr(false),
		StatusMessage: model.Ptr(out),
	}
}

func failedRestart(name, out string) model.RestartResult {
	return model.RestartResult{
		Name:    name,
		Success: false,
		Message: "Failed to restart service: " + strings.TrimSpace(out),
	}
}
