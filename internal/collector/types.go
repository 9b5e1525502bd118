package collector

import (
	"fmt"
	"time"
)

// Config holds collector configuration.
type Config struct {
	// AgentVersion is reported in hardware_info.
	AgentVersion string

	// PublicIPURL returns {"ip": "..."}.
	PublicIPURL string

	// PublicIPTimeout bounds one lookup request.
	PublicIPTimeout time.Duration

	// PublicIPTTL is how long a successful lookup is reused.
	PublicIPTTL time.Duration

	// PublicIPRetries is the number of retries after a failed lookup.
	PublicIPRetries int

	// DisablePublicIP leaves public_ip null without any network call.
	DisablePublicIP bool

	// LocalIPProbe is the UDP address dialled to discover the outbound
	// interface address. No packets are sent.
	LocalIPProbe string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PublicIPURL:     "https://api.ipify.org?format=json",
		PublicIPTimeout: 3 * time.Second,
		PublicIPTTL:     5 * time.Minute,
		PublicIPRetries: 0,
		LocalIPProbe:    "8.8.8.8:80",
	}
}

// HTTPError is a non-2xx answer from the public IP service.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("public ip lookup error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the lookup should be retried.
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
