package command

import (
	"context"

	"github.com/rickgao/host-agent/internal/model"
)

// Error texts sent back to the collector.
const (
	MsgInvalidServices  = "Invalid services list"
	MsgMissingService   = "Missing service name"
	MsgUnknownType      = "Unknown message type"
	MsgRestartThrottled = "Restart rate limit exceeded"
)

// Services is the service-control surface the dispatcher needs.
type Services interface {
	List(ctx context.Context) ([]model.ServiceInfo, error)
	Restart(ctx context.Context, name string) (model.RestartResult, error)
}

// WatchList is replaced wholesale by set_watch_services.
type WatchList interface {
	Replace(names []string)
}

// Config holds dispatcher configuration.
type Config struct {
	// RestartRate is the sustained number of restarts allowed per second.
	// Zero disables throttling.
	RestartRate float64

	// RestartBurst is the number of restarts allowed at once.
	RestartBurst int
}

// DefaultConfig returns defaults with throttling disabled.
func DefaultConfig() Config {
	return Config{
		RestartBurst: 1,
	}
}

// Stats contains dispatcher counters.
type Stats struct {
	Received  int64 `json:"received"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Unknown   int64 `json:"unknown"`
}
