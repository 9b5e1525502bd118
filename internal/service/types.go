package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/host-agent/internal/model"
)

// Sentinel errors.
var (
	ErrUnsupportedPlatform = errors.New("platform is not supported")
	ErrEmptyName           = errors.New("service name is empty")
)

// Manager is the service-control surface the agent depends on.
type Manager interface {
	// List enumerates all services known to the service manager.
	List(ctx context.Context) ([]model.ServiceInfo, error)

	// Status reports whether the named service is running. A service manager
	// that answers with a failure exit code yields IsRunning=false and no error.
	Status(ctx context.Context, name string) (model.ServiceStatus, error)

	// Restart restarts the named service. A refused restart is reported in the
	// result with Success=false; err is reserved for failures to run at all.
	Restart(ctx context.Context, name string) (model.RestartResult, error)
}

// Config holds service-control configuration.
type Config struct {
	// CommandTimeout bounds every external command.
	CommandTimeout time.Duration

	// DisableSudo runs systemctl restart without sudo.
	DisableSudo bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		CommandTimeout: 30 * time.Second,
	}
}

// CommandError is returned by a Runner when the command ran but exited
// non-zero. Output holds combined stdout and stderr.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

// IsCommandError reports whether err is a non-zero exit from a command.
func IsCommandError(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr)
}

const restartedMessage = "Service restarted successfully."
