package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/host-agent/internal/connection"
	"github.com/rickgao/host-agent/internal/model"
)

// Session serves one collector connection.
type Session struct {
	cfg        Config
	collector  Collector
	services   StatusSource
	watch      WatchList
	dispatcher Dispatcher
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewSession creates a Session.
func NewSession(cfg Config, collector Collector, services StatusSource, watch WatchList, dispatcher Dispatcher, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		cfg:        cfg,
		collector:  collector,
		services:   services,
		watch:      watch,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// SetRecorder registers r to be told about each sent usage tick.
func (s *Session) SetRecorder(r Recorder) {
	s.recorder = r
}

// Serve performs the connect-time exchange, then runs the transmitter and
// receiver until one of them stops. The client is closed before Serve
// returns and no goroutine started here outlives it.
func (s *Session) Serve(ctx context.Context, client connection.Client) error {
	defer client.Close()

	snd := &sender{client: client, systemID: s.cfg.SystemID, now: s.now}

	if err := snd.send(model.NewRequest(model.TypeGetWatchServices)); err != nil {
		return err
	}
	if err := snd.send(model.NewHardwareMessage(s.collector.Hardware(ctx))); err != nil {
		return err
	}
	s.logger.Info("hardware info sent")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.transmit(gctx, snd)
	})
	g.Go(func() error {
		return s.receive(gctx, client, snd)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}
