package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultPollInterval = 10 * time.Second

// Poller runs at most one periodic task. Starting a new task stops the
// previous one and waits for its goroutine to exit, so two tasks never
// overlap. The first tick comes one interval after start.
type Poller struct {
	interval time.Duration

	mu        sync.Mutex
	task      func(ctx context.Context)
	cancel    context.CancelFunc
	done      chan struct{}
	suspended bool

	active atomic.Int32
}

func NewPoller(interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{interval: interval}
}

func (p *Poller) Interval() time.Duration { return p.interval }

// Start replaces the current task. While suspended the task is remembered
// and begins on Resume.
func (p *Poller) Start(task func(ctx context.Context)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.task = task
	if !p.suspended {
		p.launchLocked()
	}
}

// Stop ends the current task and forgets it.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.task = nil
}

// Suspend pauses ticking but keeps the task for Resume.
func (p *Poller) Suspend() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.suspended = true
	p.stopLocked()
}

// Resume restarts the remembered task. It reports whether a task resumed.
func (p *Poller) Resume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.suspended {
		return false
	}
	p.suspended = false
	if p.task == nil || p.cancel != nil {
		return false
	}
	p.launchLocked()
	return true
}

// Active is the number of running tick goroutines: zero or one.
func (p *Poller) Active() int {
	return int(p.active.Load())
}

func (p *Poller) launchLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	task := p.task
	p.active.Add(1)

	go func() {
		defer close(done)
		defer p.active.Add(-1)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				task(ctx)
			}
		}
	}()
}

func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}
