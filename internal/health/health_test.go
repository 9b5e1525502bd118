package health

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rickgao/host-agent/internal/command"
	"github.com/rickgao/host-agent/internal/connection"
)

type fakeConn struct{ stats connection.ManagerStats }

func (f fakeConn) Stats() connection.ManagerStats { return f.stats }

type fakeCommands struct{ stats command.Stats }

func (f fakeCommands) Stats() command.Stats { return f.stats }

type fakeWatch int

func (f fakeWatch) Len() int { return int(f) }

func TestStatus_Connected(t *testing.T) {
	since := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := NewStatus("web-1", Sources{
		Connection: fakeConn{connection.ManagerStats{
			State:          connection.StateConnected,
			SessionID:      "abc",
			Attempts:       3,
			Sessions:       2,
			ConnectedSince: since,
		}},
		Commands: fakeCommands{command.Stats{Received: 5, Succeeded: 4, Failed: 1}},
		Watch:    fakeWatch(2),
	})
	st.MarkUsageSent(since.Add(time.Minute))

	rec := httptest.NewRecorder()
	st.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "connected" {
		t.Errorf("status = %v, want connected", body["status"])
	}
	if body["system_id"] != "web-1" {
		t.Errorf("system_id = %v", body["system_id"])
	}
	if body["watched_services"] != float64(2) {
		t.Errorf("watched_services = %v, want 2", body["watched_services"])
	}
	if body["last_usage_at"] != "2026-03-01T12:01:00Z" {
		t.Errorf("last_usage_at = %v", body["last_usage_at"])
	}

	conn, ok := body["connection"].(map[string]any)
	if !ok {
		t.Fatalf("connection = %v", body["connection"])
	}
	if conn["state"] != "connected" || conn["session_id"] != "abc" || conn["attempts"] != float64(3) {
		t.Errorf("connection = %v", conn)
	}

	cmds, ok := body["commands"].(map[string]any)
	if !ok || cmds["received"] != float64(5) || cmds["failed"] != float64(1) {
		t.Errorf("commands = %v", body["commands"])
	}
}

func TestStatus_Disconnected(t *testing.T) {
	st := NewStatus("web-1", Sources{
		Connection: fakeConn{connection.ManagerStats{
			State:     connection.StateDisconnected,
			LastError: "dial refused",
		}},
	})

	rec := httptest.NewRecorder()
	st.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status code = %d, want 503", rec.Code)
	}

	report := st.Snapshot()
	if report.Status != "disconnected" {
		t.Errorf("Status = %q", report.Status)
	}
	if report.LastUsageAt != nil {
		t.Errorf("LastUsageAt = %v, want nil before first tick", report.LastUsageAt)
	}
	if report.Commands != nil {
		t.Errorf("Commands = %v, want nil without source", report.Commands)
	}
	if report.Connection.LastError != "dial refused" {
		t.Errorf("LastError = %q", report.Connection.LastError)
	}
	if st.Connected() {
		t.Error("Connected() = true, want false")
	}
}

func TestStatus_NoSources(t *testing.T) {
	st := NewStatus("web-1", Sources{})
	if st.Connected() {
		t.Error("Connected() = true without a connection source")
	}
	if r := st.Snapshot(); r.Connection != nil || r.Watched != 0 {
		t.Errorf("Snapshot() = %+v", r)
	}
}

func TestStatus_MethodNotAllowed(t *testing.T) {
	st := NewStatus("web-1", Sources{})
	rec := httptest.NewRecorder()
	st.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status code = %d, want 405", rec.Code)
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	st := NewStatus("web-1", Sources{
		Connection: fakeConn{connection.ManagerStats{State: connection.StateConnected}},
	})
	srv := NewServer(ln.Addr().String(), st, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status code = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	srv := NewServer(ln.Addr().String(), NewStatus("x", Sources{}), nil)
	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected error for address in use")
	}
}
