package agent

import (
	"context"
	"time"

	"github.com/rickgao/host-agent/internal/model"
)

// transmit sends usage_info immediately, then again each Interval after the
// previous send completed. A send failure ends the session.
func (s *Session) transmit(ctx context.Context, snd *sender) error {
	for {
		msg := s.usageMessage(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err := snd.send(msg); err != nil {
			return err
		}
		if s.recorder != nil {
			s.recorder.MarkUsageSent(s.now())
		}

		timer := time.NewTimer(s.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// usageMessage collects usage and the status of every watched service.
func (s *Session) usageMessage(ctx context.Context) *model.UsageMessage {
	usage := s.collector.Usage(ctx)

	names := s.watch.Snapshot()
	statuses := make([]model.ServiceStatus, 0, len(names))
	for _, name := range names {
		statuses = append(statuses, s.serviceStatus(ctx, name))
	}

	return model.NewUsageMessage(usage, statuses)
}

// serviceStatus never fails: an error becomes is_running=null with the error
// text as the status message.
func (s *Session) serviceStatus(ctx context.Context, name string) model.ServiceStatus {
	status, err := s.services.Status(ctx, name)
	if err != nil {
		s.logger.Warn("service status failed", "service", name, "error", err)
		return model.ServiceStatus{
			Name:          name,
			StatusMessage: model.Ptr(err.Error()),
		}
	}
	status.Name = name
	return status
}
