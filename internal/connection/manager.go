package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session serves one live connection. Serve returns when the connection
// fails or ctx is cancelled, after every goroutine it started has stopped.
type Session interface {
	Serve(ctx context.Context, client Client) error
}

// SessionFunc adapts a function to Session.
type SessionFunc func(ctx context.Context, client Client) error

// Serve calls f.
func (f SessionFunc) Serve(ctx context.Context, client Client) error {
	return f(ctx, client)
}

// Manager keeps one collector connection alive: connect, serve, disconnect,
// wait, repeat.
type Manager struct {
	cfg     ManagerConfig
	session Session
	logger  *slog.Logger

	newClient func(ClientConfig, *slog.Logger) Client

	mu    sync.RWMutex
	stats ManagerStats
}

// NewManager creates a new Connection Manager.
func NewManager(cfg ManagerConfig, session Session, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		cfg:       cfg,
		session:   session,
		logger:    logger,
		newClient: NewClient,
	}
}

// Run connects and serves until ctx is cancelled, retrying every
// ReconnectDelay. It returns nil on cancellation and a *FatalError when the
// endpoint configuration is unusable. Sessions never overlap.
func (m *Manager) Run(ctx context.Context) error {
	delay := m.cfg.ReconnectDelay

	for {
		if ctx.Err() != nil {
			return nil
		}

		sessionID := uuid.NewString()
		logger := m.logger.With("session_id", sessionID)
		attempt := m.beginAttempt(sessionID)

		logger.Info("connecting", "url", m.cfg.Client.URL, "attempt", attempt)

		client := m.newClient(m.cfg.Client, logger)
		err := client.Connect(ctx)
		switch {
		case err != nil && IsFatal(err):
			m.setState(StateFatal, err)
			logger.Error("connection failed permanently", "error", err)
			return err

		case err != nil:
			if ctx.Err() != nil {
				m.setState(StateDisconnected, nil)
				return nil
			}
			m.setState(StateDisconnected, err)
			logger.Warn("connection failed", "error", err, "retry_in", delay)

		default:
			m.markConnected()
			logger.Info("connected", "url", m.cfg.Client.URL)

			err = m.session.Serve(ctx, client)
			client.Close()

			if ctx.Err() != nil {
				m.setState(StateDisconnected, nil)
				logger.Info("session stopped")
				return nil
			}
			if err == nil {
				err = ErrConnectionClosed
			}
			m.setState(StateDisconnected, err)
			logger.Warn("connection lost", "error", err, "retry_in", delay)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// Stats returns a copy of the current statistics.
func (m *Manager) Stats() ManagerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Connected reports whether a session is live.
func (m *Manager) Connected() bool {
	return m.Stats().State == StateConnected
}

func (m *Manager) beginAttempt(sessionID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Attempts++
	m.stats.State = StateConnecting
	m.stats.SessionID = sessionID
	return m.stats.Attempts
}

func (m *Manager) markConnected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.State = StateConnected
	m.stats.Sessions++
	m.stats.ConnectedSince = time.Now()
}

func (m *Manager) setState(state State, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.State = state
	if state != StateConnected {
		m.stats.ConnectedSince = time.Time{}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		m.stats.LastError = err.Error()
	}
}
