package config

import (
	"strings"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultInterval         = 10 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultPingTimeout      = 60 * time.Second
	DefaultReadLimit        = 1 << 20
	DefaultCommandTimeout   = 30 * time.Second
	DefaultRestartBurst     = 1
	DefaultPublicIPURL      = "https://api.ipify.org?format=json"
	DefaultPublicIPTimeout  = 3 * time.Second
	DefaultPublicIPTTL      = 5 * time.Minute
	DefaultLocalIPProbe     = "8.8.8.8:80"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

func (c *Config) applyDefaults() {
	c.Agent.SystemID = strings.TrimSpace(c.Agent.SystemID)
	c.Agent.URL = strings.TrimSpace(c.Agent.URL)

	// Agent defaults
	if c.Agent.Interval == 0 {
		c.Agent.Interval = Duration(DefaultInterval)
	}

	// Connection defaults
	if c.Connection.HandshakeTimeout == 0 {
		c.Connection.HandshakeTimeout = Duration(DefaultHandshakeTimeout)
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if c.Connection.PingTimeout == 0 {
		c.Connection.PingTimeout = Duration(DefaultPingTimeout)
	}
	if c.Connection.ReadLimit == 0 {
		c.Connection.ReadLimit = DefaultReadLimit
	}

	// Services defaults
	if c.Services.CommandTimeout == 0 {
		c.Services.CommandTimeout = Duration(DefaultCommandTimeout)
	}
	if c.Services.RestartBurst == 0 {
		c.Services.RestartBurst = DefaultRestartBurst
	}

	// Network defaults
	if c.Network.PublicIPURL == "" {
		c.Network.PublicIPURL = DefaultPublicIPURL
	}
	if c.Network.PublicIPTimeout == 0 {
		c.Network.PublicIPTimeout = Duration(DefaultPublicIPTimeout)
	}
	if c.Network.PublicIPTTL == 0 {
		c.Network.PublicIPTTL = Duration(DefaultPublicIPTTL)
	}
	if c.Network.LocalIPProbe == "" {
		c.Network.LocalIPProbe = DefaultLocalIPProbe
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
