package checkout

import (
	"sync"
	"time"
)

// countdown is the post-order redirect timer: a fixed number of one-second
// ticks, then onDone exactly once. Stop cancels it; a stopped countdown never
// fires. Stop is idempotent and safe to race with expiry.
type countdown struct {
	mu      sync.Mutex
	stopped bool
	stop    chan struct{}
	done    sync.Once
}

func startCountdown(seconds int, tick time.Duration, onTick func(remaining int), onDone func()) *countdown {
	c := &countdown{stop: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		remaining := seconds
		for remaining > 0 {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				remaining--
				if onTick != nil {
					onTick(remaining)
				}
			}
		}
		c.fire(onDone)
	}()

	return c
}

func (c *countdown) fire(onDone func()) {
	c.mu.Lock()
	stopped := c.stopped
	c.mu.Unlock()
	if stopped {
		return
	}
	c.done.Do(onDone)
}

func (c *countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stop)
}
