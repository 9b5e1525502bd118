package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Agent.SystemID == "" {
		return errors.New("agent.system_id is required; set it to a unique identifier for this machine")
	}
	if c.Agent.URL == "" {
		return errors.New("agent.url is required; set it to your WebSocket server URL")
	}
	if !strings.HasPrefix(c.Agent.URL, "ws://") && !strings.HasPrefix(c.Agent.URL, "wss://") {
		return fmt.Errorf("agent.url must start with ws:// or wss://, got %q", c.Agent.URL)
	}
	if c.Agent.Interval <= 0 {
		return fmt.Errorf("agent.interval must be positive, got %v", c.Agent.Interval)
	}

	if c.Connection.HandshakeTimeout < 0 || c.Connection.WriteTimeout < 0 ||
		c.Connection.PingInterval < 0 || c.Connection.PingTimeout < 0 {
		return errors.New("connection timeouts must be >= 0")
	}
	if c.Connection.ReadLimit < 0 {
		return fmt.Errorf("connection.read_limit must be >= 0, got %d", c.Connection.ReadLimit)
	}

	if c.Services.CommandTimeout < 0 {
		return errors.New("services.command_timeout must be >= 0")
	}
	if c.Services.RestartRate < 0 {
		return fmt.Errorf("services.restart_rate must be >= 0, got %v", c.Services.RestartRate)
	}
	if c.Services.RestartBurst < 1 {
		return fmt.Errorf("services.restart_burst must be >= 1, got %d", c.Services.RestartBurst)
	}

	if c.Network.PublicIPRetries < 0 {
		return fmt.Errorf("network.public_ip_retries must be >= 0, got %d", c.Network.PublicIPRetries)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}
