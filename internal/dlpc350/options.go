package dlpc350

import (
	"time"

	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/transport"
)

const (
	// DefaultPollAttempts is how many read-backs confirm a state change
	DefaultPollAttempts = 5

	// DefaultPollInterval is the delay between read-backs
	DefaultPollInterval = 100 * time.Millisecond
)

// Config holds the driver configuration
type Config struct {
	// PollAttempts bounds the read-backs after a mode-changing write
	PollAttempts int

	// PollInterval is the fixed delay between read-backs
	PollInterval time.Duration

	// ReadTimeout bounds the wait for each reply packet
	ReadTimeout time.Duration

	// Logger receives driver events (optional)
	Logger *zap.Logger
}

func defaultConfig() Config {
	return Config{
		PollAttempts: DefaultPollAttempts,
		PollInterval: DefaultPollInterval,
		ReadTimeout:  transport.DefaultReadTimeout,
	}
}

// Option is a functional option for configuring the Driver
type Option func(*Config)

// WithPollAttempts sets how many read-backs confirm a state change.
//
// Example:
//
//	drv := dlpc350.New(t, dlpc350.WithPollAttempts(10))
func WithPollAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.PollAttempts = n
		}
	}
}

// WithPollInterval sets the delay between read-backs
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.PollInterval = d
		}
	}
}

// WithReadTimeout sets the reply timeout
func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.ReadTimeout = d
		}
	}
}

// WithLogger sets the driver logger.
//
// Example:
//
//	drv := dlpc350.New(t, dlpc350.WithLogger(logging.GetLogger().Named("dlpc350")))
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}
