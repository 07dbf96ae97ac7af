package dashboard

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoller(t *testing.T) {
	t.Run("should tick until stopped", func(t *testing.T) {
		req := require.New(t)
		p := NewPoller(5 * time.Millisecond)
		var ticks atomic.Int32

		p.Start(func(context.Context) { ticks.Add(1) })
		req.Eventually(func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

		p.Stop()
		req.Zero(p.Active())
		after := ticks.Load()
		req.Never(func() bool { return ticks.Load() != after }, 30*time.Millisecond, time.Millisecond)
	})

	t.Run("should replace the previous task on start", func(t *testing.T) {
		req := require.New(t)
		p := NewPoller(time.Millisecond)
		defer p.Stop()
		var first, second atomic.Int32

		p.Start(func(context.Context) { first.Add(1) })
		for i := 0; i < 10; i++ {
			p.Start(func(context.Context) { second.Add(1) })
			req.Equal(1, p.Active())
		}
		frozen := first.Load()

		req.Eventually(func() bool { return second.Load() > 0 }, time.Second, time.Millisecond)
		req.Equal(frozen, first.Load())
	})

	t.Run("should remember the task while suspended", func(t *testing.T) {
		req := require.New(t)
		p := NewPoller(time.Millisecond)
		defer p.Stop()
		var ticks atomic.Int32

		p.Suspend()
		p.Start(func(context.Context) { ticks.Add(1) })
		req.Zero(p.Active())

		req.True(p.Resume())
		req.Equal(1, p.Active())
		req.Eventually(func() bool { return ticks.Load() > 0 }, time.Second, time.Millisecond)
		req.False(p.Resume())
	})

	t.Run("should not resume after stop", func(t *testing.T) {
		req := require.New(t)
		p := NewPoller(time.Millisecond)

		p.Start(func(context.Context) {})
		p.Suspend()
		p.Stop()

		req.False(p.Resume())
		req.Zero(p.Active())
	})

	t.Run("should default a non-positive interval", func(t *testing.T) {
		require.Equal(t, DefaultPollInterval, NewPoller(0).Interval())
	})
}
