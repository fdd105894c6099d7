// Package sync owns the process-wide refresh singletons: the fixed-interval
// poller (here) and, by lifecycle convention, the push listener. Both have a
// guarded single-start and an idempotent stop so logout can always tear them
// down without orphaning timers.
package sync

import (
	"sync"
	"time"
)

type Poller struct {
	interval time.Duration
	tick     func()

	mu   sync.Mutex
	stop chan struct{}
}

// NewPoller calls tick every interval once started. tick runs on the
// poller's goroutine; callers forward into their own event loop.
func NewPoller(interval time.Duration, tick func()) *Poller {
	return &Poller{interval: interval, tick: tick}
}

// Start begins polling. A second Start while running is a no-op: there is
// never more than one active timer.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return
	}
	stop := make(chan struct{})
	p.stop = stop
	go p.run(stop)
}

// Stop halts polling; stopping an idle poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop == nil {
		return
	}
	close(p.stop)
	p.stop = nil
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}

func (p *Poller) run(stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}
