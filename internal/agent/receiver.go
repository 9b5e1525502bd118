package agent

import (
	"context"
	"fmt"

	"github.com/rickgao/host-agent/internal/connection"
	"github.com/rickgao/host-agent/internal/model"
)

// receive handles inbound frames one at a time until the connection closes.
func (s *Session) receive(ctx context.Context, client connection.Client, snd *sender) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-client.Messages():
			if !ok {
				return readError(client)
			}
			if err := s.handle(ctx, msg, snd); err != nil {
				return err
			}
		}
	}
}

// handle dispatches one frame. Malformed frames are dropped without a reply.
func (s *Session) handle(ctx context.Context, msg connection.TimestampedMessage, snd *sender) error {
	cmd, err := model.ParseCommand(msg.Data)
	if err != nil {
		s.logger.Warn("discarding malformed message", "error", err, "bytes", len(msg.Data))
		return nil
	}
	cmd.ReceivedAt = msg.ReceivedAt

	s.logger.Debug("command received", "type", cmd.Type)
	resp := s.dispatcher.Dispatch(ctx, cmd)
	if err := snd.send(resp); err != nil {
		return fmt.Errorf("respond to %s: %w", cmd.Type, err)
	}
	return nil
}

// readError returns the reason the read loop stopped.
func readError(client connection.Client) error {
	select {
	case err := <-client.Errors():
		return fmt.Errorf("read: %w", err)
	default:
		return connection.ErrConnectionClosed
	}
}
