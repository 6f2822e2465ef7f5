package elasticsearch

import (
	"time"

	"github.com/jonesrussell/north-cloud/link-review/infrastructure/retry"
)

// Config holds client settings. Basic auth is used when Username and
// Password are set, otherwise APIKey when set.
type Config struct {
	URL         string
	Username    string
	Password    string
	APIKey      string
	MaxRetries  int
	PingTimeout time.Duration
	// Retry governs connection verification at startup.
	Retry retry.Config
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:9200"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 5 * time.Second
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry = retry.Config{
			MaxAttempts:  5,
			InitialDelay: 2 * time.Second,
			MaxDelay:     10 * time.Second,
		}
	}
}
