package config

// Config is the root configuration for an agent.
type Config struct {
	Agent      AgentConfig      `yaml:"agent"`
	Connection ConnectionConfig `yaml:"connection"`
	Services   ServicesConfig   `yaml:"services"`
	Network    NetworkConfig    `yaml:"network"`
	Health     HealthConfig     `yaml:"health"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AgentConfig identifies this host and the collector it reports to.
type AgentConfig struct {
	SystemID string   `yaml:"system_id"`
	URL      string   `yaml:"url"`      // ws:// or wss:// collector endpoint
	Interval Duration `yaml:"interval"` // Also sets the reconnect delay, clamped to [1s, 30s]
}

// ConnectionConfig tunes the WebSocket transport.
type ConnectionConfig struct {
	HandshakeTimeout Duration `yaml:"handshake_timeout"`
	WriteTimeout     Duration `yaml:"write_timeout"`
	PingInterval     Duration `yaml:"ping_interval"` // 0 disables keepalive pings
	PingTimeout      Duration `yaml:"ping_timeout"`
	ReadLimit        int64    `yaml:"read_limit"`
}

// ServicesConfig controls service inspection and restarts.
type ServicesConfig struct {
	CommandTimeout Duration `yaml:"command_timeout"`
	DisableSudo    bool     `yaml:"disable_sudo"`
	RestartRate    float64  `yaml:"restart_rate"` // Restarts per second; 0 = unlimited
	RestartBurst   int      `yaml:"restart_burst"`
}

// NetworkConfig controls network identity lookups.
type NetworkConfig struct {
	PublicIPURL     string   `yaml:"public_ip_url"`
	PublicIPTimeout Duration `yaml:"public_ip_timeout"`
	PublicIPTTL     Duration `yaml:"public_ip_ttl"`
	PublicIPRetries int      `yaml:"public_ip_retries"`
	DisablePublicIP bool     `yaml:"disable_public_ip"`
	LocalIPProbe    string   `yaml:"local_ip_probe"`
}

// HealthConfig enables the local health endpoint.
type HealthConfig struct {
	Addr string `yaml:"addr"` // e.g. "127.0.0.1:9477"; empty disables
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}
