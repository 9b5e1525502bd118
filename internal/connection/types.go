package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected     = errors.New("not connected")
	ErrStaleConnection  = errors.New("connection stale (no pong)")
	ErrAlreadyClosed    = errors.New("already closed")
	ErrConnectionClosed = errors.New("connection closed")

	// ErrServerUnavailable is a 5xx answer to the upgrade request, typically
	// from a proxy while the collector restarts. It is retried.
	ErrServerUnavailable = errors.New("server unavailable")

	// Configuration errors. Returned wrapped in *FatalError.
	ErrInvalidEndpoint   = errors.New("invalid endpoint")
	ErrHandshakeRejected = errors.New("handshake rejected")
)

// FatalError marks a failure that retrying cannot fix.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return "websocket configuration error: " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err should stop the reconnect loop.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // ws:// or wss:// collector endpoint
	HandshakeTimeout time.Duration // Upper bound on the opening handshake
	PingInterval     time.Duration // Keepalive ping period; zero disables pings
	PingTimeout      time.Duration // Max time without pong before the connection is stale
	WriteTimeout     time.Duration // Write deadline for sends
	ReadLimit        int64         // Max inbound frame size; zero means unlimited
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		PingTimeout:      60 * time.Second,
		WriteTimeout:     5 * time.Second,
		ReadLimit:        1 << 20,
		BufferSize:       64,
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	Client         ClientConfig
	ReconnectDelay time.Duration // Constant wait between attempts
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Client:         DefaultClientConfig(),
		ReconnectDelay: Backoff(10 * time.Second),
	}
}

// Backoff bounds for the reconnect delay.
const (
	MinBackoff = time.Second
	MaxBackoff = 30 * time.Second
)

// Backoff returns the reconnect delay for a send interval: the interval
// clamped to [MinBackoff, MaxBackoff]. It does not grow across retries.
func Backoff(interval time.Duration) time.Duration {
	return min(max(interval, MinBackoff), MaxBackoff)
}

// State is the manager's connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ManagerStats provides statistics about the connection manager.
type ManagerStats struct {
	State          State
	SessionID      string
	Attempts       int64
	Sessions       int64
	LastError      string
	ConnectedSince time.Time
}
