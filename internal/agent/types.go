package agent

import (
	"context"
	"time"

	"github.com/rickgao/host-agent/internal/model"
)

// Collector produces telemetry snapshots. It never fails; unavailable fields
// are left nil.
type Collector interface {
	Hardware(ctx context.Context) model.HardwareInfo
	Usage(ctx context.Context) model.UsageInfo
}

// StatusSource reports the state of one service.
type StatusSource interface {
	Status(ctx context.Context, name string) (model.ServiceStatus, error)
}

// Dispatcher turns one inbound command into one response.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd model.Command) model.Message
}

// WatchList is read by the transmitter on every tick.
type WatchList interface {
	Snapshot() []string
}

// Recorder is notified after each usage tick is sent.
type Recorder interface {
	MarkUsageSent(at time.Time)
}

// Config holds session configuration.
type Config struct {
	SystemID string
	Interval time.Duration // Sleep between usage ticks (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Second,
	}
}
