// Package command maps inbound collector commands to local actions.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/rickgao/host-agent/internal/model"
)

type handlerFunc func(ctx context.Context, cmd model.Command) model.Message

// Dispatcher executes one command and produces exactly one response.
type Dispatcher struct {
	services Services
	watch    WatchList
	limiter  *rate.Limiter
	logger   *slog.Logger
	handlers map[string]handlerFunc

	received  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	unknown   atomic.Int64
}

// NewDispatcher creates a dispatcher over services and watch.
func NewDispatcher(cfg Config, services Services, watch WatchList, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		services: services,
		watch:    watch,
		logger:   logger,
	}
	if cfg.RestartRate > 0 {
		burst := cfg.RestartBurst
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RestartRate), burst)
	}

	d.handlers = map[string]handlerFunc{
		model.TypeGetServices:      d.getServices,
		model.TypeSetWatchServices: d.setWatchServices,
		model.TypeRestartService:   d.restartService,
	}
	return d
}

// Dispatch runs the handler for cmd.Type. Unrecognised types produce an
// "unknown" error envelope. The returned message is never nil.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd model.Command) (resp model.Message) {
	d.received.Add(1)

	handler, ok := d.handlers[cmd.Type]
	if !ok {
		d.unknown.Add(1)
		d.logger.Warn("unknown command", "type", cmd.Type)
		return model.NewError(model.TypeUnknown, MsgUnknownType)
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command handler panicked", "type", cmd.Type, "panic", r)
			resp = model.NewError(cmd.Type, fmt.Sprintf("internal error: %v", r))
			d.failed.Add(1)
		}
	}()

	resp = handler(ctx, cmd)
	if errMsg, isErr := resp.(*model.ErrorMessage); isErr {
		d.failed.Add(1)
		d.logger.Warn("command failed", "type", cmd.Type, "error", errMsg.Error)
	} else {
		d.succeeded.Add(1)
	}
	return resp
}

// Stats returns current counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Received:  d.received.Load(),
		Succeeded: d.succeeded.Load(),
		Failed:    d.failed.Load(),
		Unknown:   d.unknown.Load(),
	}
}

func (d *Dispatcher) getServices(ctx context.Context, _ model.Command) model.Message {
	services, err := d.services.List(ctx)
	if err != nil {
		return model.NewError(model.TypeGetServices, err.Error())
	}
	d.logger.Debug("listed services", "count", len(services))
	return model.NewServicesMessage(services)
}

func (d *Dispatcher) setWatchServices(_ context.Context, cmd model.Command) model.Message {
	names, err := cmd.Strings("services")
	if err != nil {
		return model.NewError(model.TypeSetWatchServices, MsgInvalidServices)
	}

	d.watch.Replace(names)
	d.logger.Info("watch services updated", "services", names)
	return model.NewSuccess(model.TypeSetWatchServices, "")
}

func (d *Dispatcher) restartService(ctx context.Context, cmd model.Command) model.Message {
	name, ok := cmd.String("service")
	if !ok || name == "" {
		return model.NewError(model.TypeRestartService, MsgMissingService)
	}

	if d.limiter != nil && !d.limiter.Allow() {
		return model.NewError(model.TypeRestartService, MsgRestartThrottled)
	}

	d.logger.Info("restarting service", "service", name)
	result, err := d.services.Restart(ctx, name)
	if err != nil {
		return model.NewError(model.TypeRestartService, err.Error())
	}
	if !result.Success {
		return model.NewError(model.TypeRestartService, result.Message)
	}
	return model.NewSuccess(model.TypeRestartService, fmt.Sprintf("Service %s restarted successfully.", name))
}
