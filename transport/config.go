package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/thatcher/pydvid/dvid"
)

// Config holds client-side settings loadable from a TOML file:
//
//	server = "mygreatserver.test.com:8000"
//	timeout_secs = 300
//
//	[retry]
//	max_attempts = 5
//	initial_delay_msecs = 100
//	max_delay_msecs = 5000
//
//	[log]
//	logfile = "/var/log/pydvid.log"
//	max_log_size = 500 # MB
//	max_log_age = 30   # days
type Config struct {
	Server      string         `toml:"server"`
	TimeoutSecs int            `toml:"timeout_secs"`
	Retry       RetryConfig    `toml:"retry"`
	Log         dvid.LogConfig `toml:"log"`
}

// RetryConfig is the TOML form of a RetryPolicy.
type RetryConfig struct {
	MaxAttempts       int `toml:"max_attempts"`
	InitialDelayMsecs int `toml:"initial_delay_msecs"`
	MaxDelayMsecs     int `toml:"max_delay_msecs"`
}

// LoadConfig reads a TOML configuration file and installs any log settings.
func LoadConfig(filename string) (*Config, error) {
	var c Config
	if _, err := toml.DecodeFile(filename, &c); err != nil {
		return nil, fmt.Errorf("could not decode TOML config %q: %w", filename, err)
	}
	if c.Server == "" {
		return nil, fmt.Errorf("config %q must set a server address", filename)
	}
	c.Log.SetLogger()
	return &c, nil
}

// RetryPolicy converts the TOML settings, falling back to defaults for
// unset fields.
func (c *Config) RetryPolicy() RetryPolicy {
	policy := DefaultRetryPolicy
	if c.Retry.MaxAttempts > 0 {
		policy.MaxAttempts = c.Retry.MaxAttempts
	}
	if c.Retry.InitialDelayMsecs > 0 {
		policy.InitialDelay = time.Duration(c.Retry.InitialDelayMsecs) * time.Millisecond
	}
	if c.Retry.MaxDelayMsecs > 0 {
		policy.MaxDelay = time.Duration(c.Retry.MaxDelayMsecs) * time.Millisecond
	}
	return policy
}

// NewConnection opens an HTTP connection to the configured server with the
// configured request timeout.
func (c *Config) NewConnection() (*HTTPConnection, error) {
	timeout := DefaultTimeout
	if c.TimeoutSecs > 0 {
		timeout = time.Duration(c.TimeoutSecs) * time.Second
	}
	return NewHTTPConnection(c.Server, &http.Client{Timeout: timeout})
}
