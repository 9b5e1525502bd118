// collectortest runs a development collector that accepts agent connections,
// prints every envelope, and sends commands typed on stdin.
// Usage: go run ./cmd/collectortest --addr :8765 --watch nginx,sshd
//
// Commands:
//
//	services          request the full service list
//	watch a b c       replace the watch list
//	restart name      restart one service
//	{...}             send a raw JSON frame
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/host-agent/internal/model"
)

func main() {
	addr := flag.String("addr", ":8765", "listen address")
	watchList := flag.String("watch", "", "comma-separated services to push on get_watch_services")
	verbose := flag.Bool("verbose", false, "print full message JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	c := &collector{
		logger:  logger,
		verbose: *verbose,
		watch:   splitList(*watchList),
		out:     os.Stdout,
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           c,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("collector listening", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			cancel()
		}
	}()

	go c.readCommands(os.Stdin)

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	c.closeCurrent()
}

type collector struct {
	logger  *slog.Logger
	verbose bool
	watch   []string
	out     io.Writer

	upgrader websocket.Upgrader

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// ServeHTTP upgrades one agent connection and prints its frames until it
// closes. A new agent replaces the previous one.
func (c *collector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.Warn("upgrade failed", "error", err)
		return
	}

	c.mu.Lock()
	prev := c.conn
	c.conn = conn
	c.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	c.logger.Info("agent connected", "remote", r.RemoteAddr)
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		conn.Close()
		c.logger.Info("agent disconnected", "remote", r.RemoteAddr)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		c.handle(data)
	}
}

func (c *collector) handle(data []byte) {
	var head model.Header
	if err := json.Unmarshal(data, &head); err != nil {
		fmt.Fprintf(c.out, "[invalid] %s\n", data)
		return
	}

	if c.verbose {
		fmt.Fprintf(c.out, "[%s] %s\n", head.Type, data)
	} else {
		fmt.Fprintf(c.out, "[%s] %s\n", head.Type, summarize(head.Type, data))
	}

	if head.Type == model.TypeGetWatchServices && len(c.watch) > 0 {
		if err := c.send(setWatch(c.watch)); err != nil {
			c.logger.Warn("push watch list failed", "error", err)
		}
	}
}

// summarize prints a one-line digest of frequent envelopes.
func summarize(msgType string, data []byte) string {
	switch msgType {
	case model.TypeUsageInfo:
		var m model.UsageMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return string(data)
		}
		parts := make([]string, 0, len(m.WatchedServices))
		for _, s := range m.WatchedServices {
			state := "unknown"
			if s.IsRunning != nil {
				state = fmt.Sprintf("running=%t", *s.IsRunning)
			}
			parts = append(parts, s.Name+":"+state)
		}
		return fmt.Sprintf("system=%s cpu=%s%% mem=%sGiB disks=%d watched=[%s]",
			m.SystemID, fmtFloat(m.Usage.CPUPct), fmtFloat(m.Usage.MemUsedGiB), len(m.Usage.Disks), strings.Join(parts, " "))
	case model.TypeGetServices:
		var m model.ServicesMessage
		if err := json.Unmarshal(data, &m); err == nil && m.Services != nil {
			return fmt.Sprintf("system=%s services=%d", m.SystemID, len(m.Services))
		}
	}
	return string(data)
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%.1f", *v)
}

func (c *collector) readCommands(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		frame, err := parseCommand(line)
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
			continue
		}
		if err := c.send(frame); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
}

// parseCommand turns one stdin line into a frame.
func parseCommand(line string) ([]byte, error) {
	if strings.HasPrefix(line, "{") {
		if !json.Valid([]byte(line)) {
			return nil, errors.New("invalid JSON")
		}
		return []byte(line), nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "services":
		return json.Marshal(map[string]string{"type": model.TypeGetServices})
	case "watch":
		return setWatch(fields[1:]), nil
	case "restart":
		if len(fields) != 2 {
			return nil, errors.New("usage: restart <service>")
		}
		return json.Marshal(map[string]string{"type": model.TypeRestartService, "service": fields[1]})
	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func setWatch(names []string) []byte {
	if names == nil {
		names = []string{}
	}
	data, _ := json.Marshal(map[string]any{"type": model.TypeSetWatchServices, "services": names})
	return data
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *collector) send(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("no agent connected")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (c *collector) closeCurrent() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}
}
