package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Message types exchanged with the collector.
const (
	TypeHardwareInfo     = "hardware_info"
	TypeUsageInfo        = "usage_info"
	TypeGetWatchServices = "get_watch_services"
	TypeGetServices      = "get_services"
	TypeSetWatchServices = "set_watch_services"
	TypeRestartService   = "restart_service"
	TypeUnknown          = "unknown"
)

// ErrMalformedCommand is returned for inbound frames that are not a JSON object.
var ErrMalformedCommand = errors.New("malformed command")

// Message is an outbound envelope. The sender stamps it immediately before
// encoding so the timestamp reflects send time.
type Message interface {
	Stamp(systemID string, at time.Time)
	MessageType() string
}

// Header carries the fields every envelope has. Outbound message types embed
// it so its fields are flattened next to the type-specific ones.
type Header struct {
	SystemID  string  `json:"system_id"`
	Timestamp float64 `json:"timestamp"` // seconds since epoch
	Type      string  `json:"type"`
}

// Stamp sets the system identifier and send timestamp.
func (h *Header) Stamp(systemID string, at time.Time) {
	h.SystemID = systemID
	h.Timestamp = UnixSeconds(at)
}

// MessageType returns the envelope discriminant.
func (h *Header) MessageType() string {
	return h.Type
}

// RequestMessage is a header-only envelope (e.g. get_watch_services).
type RequestMessage struct {
	Header
}

// HardwareMessage is the one-shot hardware_info envelope.
type HardwareMessage struct {
	Header
	Hardware HardwareInfo `json:"hardware"`
}

// UsageMessage is the periodic usage_info envelope.
type UsageMessage struct {
	Header
	Usage           UsageInfo       `json:"usage"`
	WatchedServices []ServiceStatus `json:"watched_services"`
}

// ServicesMessage answers get_services.
type ServicesMessage struct {
	Header
	Services []ServiceInfo `json:"services"`
}

// SuccessMessage acknowledges a command.
type SuccessMessage struct {
	Header
	OK string `json:"ok"`
}

// ErrorMessage reports a failed command.
type ErrorMessage struct {
	Header
	Error string `json:"error"`
}

// NewRequest creates a header-only envelope.
func NewRequest(msgType string) *RequestMessage {
	return &RequestMessage{Header: Header{Type: msgType}}
}

// NewHardwareMessage creates a hardware_info envelope.
func NewHardwareMessage(info HardwareInfo) *HardwareMessage {
	return &HardwareMessage{Header: Header{Type: TypeHardwareInfo}, Hardware: info}
}

// NewUsageMessage creates a usage_info envelope. A nil status list encodes as [].
func NewUsageMessage(usage UsageInfo, watched []ServiceStatus) *UsageMessage {
	if watched == nil {
		watched = []ServiceStatus{}
	}
	return &UsageMessage{Header: Header{Type: TypeUsageInfo}, Usage: usage, WatchedServices: watched}
}

// NewServicesMessage creates a get_services response.
func NewServicesMessage(services []ServiceInfo) *ServicesMessage {
	if services == nil {
		services = []ServiceInfo{}
	}
	return &ServicesMessage{Header: Header{Type: TypeGetServices}, Services: services}
}

// NewSuccess creates a success envelope for msgType.
func NewSuccess(msgType, message string) *SuccessMessage {
	return &SuccessMessage{Header: Header{Type: msgType}, OK: message}
}

// NewError creates an error envelope for msgType.
func NewError(msgType, message string) *ErrorMessage {
	return &ErrorMessage{Header: Header{Type: msgType}, Error: message}
}

// UnixSeconds converts t to fractional seconds since epoch.
func UnixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

// Command is an inbound envelope. Fields are kept raw and decoded by the
// handler that needs them.
type Command struct {
	Type       string
	Fields     map[string]json.RawMessage
	ReceivedAt time.Time
}

// ParseCommand decodes an inbound frame. Only frames that are not a JSON
// object fail; a missing or non-string type leaves Type empty.
func ParseCommand(data []byte) (Command, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	if fields == nil {
		return Command{}, fmt.Errorf("%w: null frame", ErrMalformedCommand)
	}

	cmd := Command{Fields: fields}
	if raw, ok := fields["type"]; ok {
		var msgType string
		if err := json.Unmarshal(raw, &msgType); err == nil {
			cmd.Type = msgType
		}
	}
	return cmd, nil
}

// String returns the string field key. ok is false when the field is absent,
// null, or not a string.
func (c Command) String(key string) (string, bool) {
	raw, ok := c.Fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Strings returns the string-array field key. An absent or null field yields
// an empty result.
func (c Command) Strings(key string) ([]string, error) {
	raw, ok := c.Fields[key]
	if !ok {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return out, nil
}
