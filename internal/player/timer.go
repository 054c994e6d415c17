package player

import "time"

// countdown is the single per-question timer owned by the controller.
// Only one ticker can exist at a time: start always stops the previous one,
// and once stopped the handle exposes a nil channel so a tick that was
// already buffered is never observed.
type countdown struct {
	clock     Clock
	interval  time.Duration
	ticker    Ticker
	remaining int
}

func newCountdown(clock Clock, interval time.Duration) countdown {
	return countdown{clock: clock, interval: interval}
}

func (c *countdown) start(budget int) {
	c.stop()
	c.remaining = budget
	c.ticker = c.clock.NewTicker(c.interval)
}

func (c *countdown) stop() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	c.ticker = nil
}

func (c *countdown) armed() bool {
	return c.ticker != nil
}

// C returns the tick channel, or nil when disarmed (blocks forever in select).
func (c *countdown) C() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C()
}

// tick consumes one time unit and reports whether the budget is exhausted.
// An exhausted countdown disarms itself.
func (c *countdown) tick() bool {
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.stop()
		return true
	}
	return false
}
