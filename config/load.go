package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML file on top of the defaults, so the file may only override the values
// it cares about.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse does the same as Load, but from the already read file contents.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads the config if the path is not empty, otherwise returns defaults.
func LoadOrDefault(path string) (*Config, error) {
	if len(path) == 0 {
		return Default(), nil
	}

	return Load(path)
}

// Validate rejects values the server can't run with.
func (c *Config) Validate() error {
	switch {
	case c.NET.ReadBufferSize <= 0:
		return fmt.Errorf("config: net.read_buffer_size must be positive")
	case c.NET.AcceptLoopInterruptPeriod <= 0:
		return fmt.Errorf("config: net.accept_loop_interrupt_period must be positive")
	case c.HTTP.MaxRequestLineSize <= 0:
		return fmt.Errorf("config: http.max_request_line_size must be positive")
	case c.HTTP.MaxHeaders <= 0:
		return fmt.Errorf("config: http.max_headers must be positive")
	case c.HTTP.MaxHeadersSize <= 0:
		return fmt.Errorf("config: http.max_headers_size must be positive")
	case c.HTTP.MaxBodySize < 0:
		return fmt.Errorf("config: http.max_body_size must not be negative")
	case len(c.TLS.Cert) > 0 != (len(c.TLS.Key) > 0):
		return fmt.Errorf("config: tls.cert and tls.key must be set together")
	}

	return nil
}
