package config

import "time"

type (
	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int `yaml:"read_buffer_size"`
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed.
		ReadTimeout time.Duration `yaml:"read_timeout"`
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration `yaml:"accept_loop_interrupt_period"`
	}

	HTTP struct {
		// MaxRequestLineSize limits the request line, the request-target included.
		MaxRequestLineSize int `yaml:"max_request_line_size"`
		// MaxHeaders is the maximal number of header fields a single request may carry.
		MaxHeaders int `yaml:"max_headers"`
		// MaxHeadersSize limits the amount of bytes occupied by the headers section.
		MaxHeadersSize int `yaml:"max_headers_size"`
		// MaxBodySize limits the aggregated request body, no matter whether it was sized
		// or chunked.
		MaxBodySize int `yaml:"max_body_size"`
		// HeadersPrealloc is the initial capacity of the request headers storage.
		HeadersPrealloc int `yaml:"headers_prealloc"`
	}

	TLS struct {
		// Addr enables an additional TLS listener, if set.
		Addr string `yaml:"addr"`
		// Cert and Key are paths to the PEM-encoded certificate pair.
		Cert string `yaml:"cert"`
		Key  string `yaml:"key"`
		// AutoDomains enables ACME certificates for the listed domains, unless Cert and Key
		// are set.
		AutoDomains []string `yaml:"auto_domains"`
		// CacheDir stores ACME and self-signed certificates. Defaults to the user cache dir.
		CacheDir string `yaml:"cache_dir"`
	}

	LogFile struct {
		// Path enables logging into a rotated file, if set.
		Path       string `yaml:"path"`
		MaxSize    int    `yaml:"max_size"` // megabytes
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"` // days
		Compress   bool   `yaml:"compress"`
	}

	Log struct {
		// Level is one of debug, info, warn and error.
		Level string `yaml:"level"`
		// Encoding is either console or json.
		Encoding string  `yaml:"encoding"`
		File     LogFile `yaml:"file"`
	}
)

// Config holds settings used across various parts of the server, mainly restrictions and
// limitations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	// Addr is the plain-text listener address.
	Addr string `yaml:"addr"`
	NET  NET    `yaml:"net"`
	HTTP HTTP   `yaml:"http"`
	TLS  TLS    `yaml:"tls"`
	Log  Log    `yaml:"log"`
}

// Default returns default config. Those are initially well-balanced, however maximal defaults
// are pretty permitting.
func Default() *Config {
	return &Config{
		Addr: "localhost:8080",
		NET: NET{
			ReadBufferSize:            4 * 1024,
			ReadTimeout:               90 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
		HTTP: HTTP{
			// allow at most 16kb of request line, which is effectively pretty much tolerant,
			// considering most web-entities limit it to 4-8kb.
			MaxRequestLineSize: 16 * 1024,
			MaxHeaders:         50,
			MaxHeadersSize:     16 * 1024,
			MaxBodySize:        16 * 1024 * 1024,
			HeadersPrealloc:    10,
		},
		Log: Log{
			Level:    "info",
			Encoding: "console",
			File: LogFile{
				MaxSize:    100,
				MaxBackups: 3,
				MaxAge:     28,
			},
		},
	}
}
