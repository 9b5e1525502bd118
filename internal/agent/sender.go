package agent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rickgao/host-agent/internal/connection"
	"github.com/rickgao/host-agent/internal/model"
)

// sender stamps and encodes outbound envelopes for one connection.
type sender struct {
	client   connection.Client
	systemID string
	now      func() time.Time
}

// send stamps msg with the system identifier and the current time, then
// writes it as one compact JSON frame.
func (s *sender) send(msg model.Message) error {
	msg.Stamp(s.systemID, s.now())

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.MessageType(), err)
	}
	if err := s.client.Send(data); err != nil {
		return fmt.Errorf("send %s: %w", msg.MessageType(), err)
	}
	return nil
}
