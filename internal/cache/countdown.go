package cache

import (
	"sync"
	"time"
)

// Countdown tracks the remaining lifetime of the current cache entry and
// calls onExpire once when it runs out.
type Countdown struct {
	mu       sync.Mutex
	now      func() time.Time
	interval time.Duration
	onExpire func()

	deadline time.Time
	active   bool
	stop     chan struct{}
}

type CountdownOption func(*Countdown)

func WithCountdownClock(now func() time.Time) CountdownOption {
	return func(c *Countdown) {
		c.now = now
	}
}

// WithTickInterval sets the recompute period. A non-positive interval
// disables the background ticker; Tick must then be called by the owner.
func WithTickInterval(d time.Duration) CountdownOption {
	return func(c *Countdown) {
		c.interval = d
	}
}

func NewCountdown(onExpire func(), opts ...CountdownOption) *Countdown {
	c := &Countdown{
		now:      time.Now,
		interval: time.Second,
		onExpire: onExpire,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restart arms the countdown for an entry captured at capturedAt.
func (c *Countdown) Restart(capturedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.deadline = capturedAt.Add(TTL)
	c.active = true

	if c.interval > 0 {
		c.stop = make(chan struct{})
		go c.run(c.stop, c.interval)
	}
}

func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.active = false
}

func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Countdown) TimeLeft() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return 0
	}
	return c.leftLocked()
}

// Tick recomputes the remaining time and reports whether this call fired
// the expiry callback.
func (c *Countdown) Tick() bool {
	c.mu.Lock()
	if !c.active || c.leftLocked() > 0 {
		c.mu.Unlock()
		return false
	}
	c.active = false
	c.stopLocked()
	c.mu.Unlock()

	if c.onExpire != nil {
		c.onExpire()
	}
	return true
}

func (c *Countdown) run(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if c.Tick() {
				return
			}
		}
	}
}

func (c *Countdown) leftLocked() time.Duration {
	left := c.deadline.Sub(c.now())
	if left < 0 {
		return 0
	}
	return left
}

func (c *Countdown) stopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}
