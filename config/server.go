package config

import (
	"fmt"
	"time"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on every API call.
	Token string `json:"token"`
	// ReadTimeoutSeconds bounds reading a request, body included.
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`
	// MaxBodyKB caps request bodies.
	MaxBodyKB int64 `json:"max_body_kb"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadTimeoutSeconds == 0 {
		c.ReadTimeoutSeconds = 10
	}
	if c.MaxBodyKB == 0 {
		c.MaxBodyKB = 1024
	}
}

// Validate checks the configured limits.
func (c ServerConfig) Validate() error {
	if c.ReadTimeoutSeconds < 0 {
		return fmt.Errorf("read_timeout_seconds must not be negative")
	}
	if c.MaxBodyKB < 0 {
		return fmt.Errorf("max_body_kb must not be negative")
	}
	return nil
}

// ReadTimeout returns the read timeout as a duration.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}
