package connection

import (
	"math/rand"
	"sync"
	"time"
)

// Reconnect delay constants.
const (
	// MinReconnectDelay is the lower bound of the random retry delay after a
	// hard reconnect failure.
	MinReconnectDelay = 5 * time.Second

	// MaxReconnectDelay is the upper bound of the random retry delay.
	MaxReconnectDelay = 30 * time.Second
)

// ReconnectDelay draws randomized retry delays uniformly from [Min, Max].
// The randomization avoids thundering-herd reconnect storms when many
// clients lose the same device at once.
type ReconnectDelay struct {
	mu sync.Mutex

	min time.Duration
	max time.Duration

	attempts int

	rng *rand.Rand
}

// DelayConfig allows customizing the delay bounds.
type DelayConfig struct {
	Min time.Duration
	Max time.Duration
}

// NewReconnectDelay creates a delay calculator with default bounds.
func NewReconnectDelay() *ReconnectDelay {
	return NewReconnectDelayWithConfig(DelayConfig{})
}

// NewReconnectDelayWithConfig creates a delay calculator with custom bounds.
func NewReconnectDelayWithConfig(cfg DelayConfig) *ReconnectDelay {
	if cfg.Min <= 0 {
		cfg.Min = MinReconnectDelay
	}
	if cfg.Max <= 0 {
		cfg.Max = MaxReconnectDelay
	}
	if cfg.Max < cfg.Min {
		cfg.Max = cfg.Min
	}

	return &ReconnectDelay{
		min: cfg.Min,
		max: cfg.Max,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns a delay drawn uniformly from [Min, Max] and advances the
// attempt counter.
func (d *ReconnectDelay) Next() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.attempts++
	if d.max == d.min {
		return d.min
	}
	return d.min + time.Duration(d.rng.Int63n(int64(d.max-d.min)+1))
}

// Attempts returns the number of delays drawn since the last reset.
func (d *ReconnectDelay) Attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

// Reset clears the attempt counter. Call after a successful reconnect.
func (d *ReconnectDelay) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attempts = 0
}

// Bounds returns the configured delay bounds.
func (d *ReconnectDelay) Bounds() (min, max time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.min, d.max
}
