// Package health serves the agent's local /health endpoint.
package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rickgao/host-agent/internal/command"
	"github.com/rickgao/host-agent/internal/connection"
	"github.com/rickgao/host-agent/internal/version"
)

// ConnectionStats is implemented by *connection.Manager.
type ConnectionStats interface {
	Stats() connection.ManagerStats
}

// CommandStats is implemented by *command.Dispatcher.
type CommandStats interface {
	Stats() command.Stats
}

// WatchCounter is implemented by *watch.List.
type WatchCounter interface {
	Len() int
}

// Sources are read on every request. Nil sources are omitted from the report.
type Sources struct {
	Connection ConnectionStats
	Commands   CommandStats
	Watch      WatchCounter
}

// Report is the /health response body.
type Report struct {
	Status      string            `json:"status"`
	SystemID    string            `json:"system_id"`
	Version     version.Info      `json:"version"`
	Connection  *ConnectionReport `json:"connection,omitempty"`
	Commands    *command.Stats    `json:"commands,omitempty"`
	Watched     int               `json:"watched_services"`
	LastUsageAt *time.Time        `json:"last_usage_at,omitempty"`
}

// ConnectionReport mirrors connection.ManagerStats with a string state.
type ConnectionReport struct {
	State          string     `json:"state"`
	SessionID      string     `json:"session_id,omitempty"`
	Attempts       int64      `json:"attempts"`
	Sessions       int64      `json:"sessions"`
	LastError      string     `json:"last_error,omitempty"`
	ConnectedSince *time.Time `json:"connected_since,omitempty"`
}

// Status aggregates agent health. It implements agent.Recorder.
type Status struct {
	systemID    string
	src         Sources
	lastUsageAt atomic.Int64
}

// NewStatus creates a Status for systemID.
func NewStatus(systemID string, src Sources) *Status {
	return &Status{systemID: systemID, src: src}
}

// MarkUsageSent records the time of the latest usage tick.
func (s *Status) MarkUsageSent(at time.Time) {
	s.lastUsageAt.Store(at.UnixNano())
}

// Connected reports whether the connection manager has a live session.
func (s *Status) Connected() bool {
	if s.src.Connection == nil {
		return false
	}
	return s.src.Connection.Stats().State == connection.StateConnected
}

// Snapshot builds the current report.
func (s *Status) Snapshot() Report {
	r := Report{
		Status:   "disconnected",
		SystemID: s.systemID,
		Version:  version.Get(),
	}

	if s.src.Connection != nil {
		st := s.src.Connection.Stats()
		cr := &ConnectionReport{
			State:     st.State.String(),
			SessionID: st.SessionID,
			Attempts:  st.Attempts,
			Sessions:  st.Sessions,
			LastError: st.LastError,
		}
		if !st.ConnectedSince.IsZero() {
			since := st.ConnectedSince.UTC()
			cr.ConnectedSince = &since
		}
		r.Connection = cr
		if st.State == connection.StateConnected {
			r.Status = "connected"
		}
	}
	if s.src.Commands != nil {
		cs := s.src.Commands.Stats()
		r.Commands = &cs
	}
	if s.src.Watch != nil {
		r.Watched = s.src.Watch.Len()
	}
	if v := s.lastUsageAt.Load(); v > 0 {
		at := time.Unix(0, v).UTC()
		r.LastUsageAt = &at
	}
	return r
}

// ServeHTTP writes the report as JSON, with 503 while disconnected.
func (s *Status) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := s.Snapshot()
	code := http.StatusOK
	if report.Status != "connected" {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(report)
}
