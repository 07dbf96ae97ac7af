package summary

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/umar/nexttalk-dash/internal/database"
	"github.com/umar/nexttalk-dash/internal/models"
)

func TestGenerator_Summarize(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := database.NewMemoryWithClock(func() time.Time { return now })
	_, err := store.Seed(ctx, database.DemoData(now))
	require.NoError(t, err)
	gen := NewGenerator(store)
	gen.now = func() time.Time { return now }

	t.Run("should use the room's digest and recent count", func(t *testing.T) {
		req := require.New(t)

		s, err := gen.Summarize(ctx, "room2")

		req.NoError(err)
		req.Equal(canned["room2"], s.SummaryPoints)
		req.Equal(1, s.MessageCount)
		req.Equal(WindowLabel, s.TimeRange)
	})

	t.Run("should fall back for other rooms", func(t *testing.T) {
		req := require.New(t)

		s, err := gen.Summarize(ctx, "room9")

		req.NoError(err)
		req.Equal(fallback, s.SummaryPoints)
		req.Zero(s.MessageCount)
	})

	t.Run("should cap the count and skip old messages", func(t *testing.T) {
		req := require.New(t)
		me := models.User{ID: "current_user", Username: "You"}
		for i := 0; i < MaxMessages+5; i++ {
			_, err := store.CreateMessage(ctx, "room3", me, "x")
			req.NoError(err)
		}
		s, err := gen.Summarize(ctx, "room3")
		req.NoError(err)
		req.Equal(MaxMessages, s.MessageCount)

		gen.now = func() time.Time { return now.Add(48 * time.Hour) }
		defer func() { gen.now = func() time.Time { return now } }()
		s, err = gen.Summarize(ctx, "room3")
		req.NoError(err)
		req.Zero(s.MessageCount)
	})

	t.Run("should not share the canned slice", func(t *testing.T) {
		s, err := gen.Summarize(ctx, "room1")
		require.NoError(t, err)
		s.SummaryPoints[0] = "changed"
		require.NotEqual(t, "changed", canned["room1"][0])
	})
}
