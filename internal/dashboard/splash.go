package dashboard

import (
	"sync"
	"time"
)

const DefaultSplashDelay = 2 * time.Second

// SplashScreen fires its completion callback exactly once after the delay,
// unless stopped first.
type SplashScreen struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	once    sync.Once
}

func NewSplashScreen(delay time.Duration) *SplashScreen {
	if delay < 0 {
		delay = 0
	}
	return &SplashScreen{delay: delay}
}

// Start schedules onComplete. Calling Start again is a no-op.
func (s *SplashScreen) Start(onComplete func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil || s.stopped {
		return
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return
		}
		s.once.Do(onComplete)
	})
}

func (s *SplashScreen) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}
