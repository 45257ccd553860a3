package services

import (
	"sync"
	"time"
)

// Ticker is the subset of *time.Ticker the countdown needs
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d
type TickerFactory func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker is the TickerFactory backed by time.NewTicker
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Countdown is a running periodic callback. It is a scoped resource: whoever starts
// it owns it and must call Stop, which is safe to call any number of times.
type Countdown struct {
	done     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
}

// StartCountdown calls onTick every interval until onTick returns false or Stop is called
func StartCountdown(factory TickerFactory, interval time.Duration, onTick func() bool) *Countdown {
	if factory == nil {
		factory = NewRealTicker
	}
	c := &Countdown{
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	ticker := factory(interval)

	go func() {
		defer close(c.exited)
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case <-ticker.C():
				if !onTick() {
					return
				}
			}
		}
	}()

	return c
}

// Stop cancels the countdown and waits for its goroutine to exit.
// It must not be called from inside onTick.
func (c *Countdown) Stop() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.done) })
	<-c.exited
}

// Done is closed once the countdown goroutine has exited
func (c *Countdown) Done() <-chan struct{} {
	return c.exited
}
