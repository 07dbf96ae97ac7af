package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/umar/nexttalk-dash/internal/models"
)

func seededMemory(t *testing.T) (*Memory, time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryWithClock(func() time.Time { return now })
	seeded, err := store.Seed(context.Background(), DemoData(now))
	require.NoError(t, err)
	require.True(t, seeded)
	return store, now
}

func TestMemory_Seed(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store, now := seededMemory(t)

	// When seeding a second time
	seeded, err := store.Seed(ctx, DemoData(now))

	// Then nothing changes
	req.NoError(err)
	req.False(seeded)
	rooms, err := store.ListRooms(ctx, "current_user", 100)
	req.NoError(err)
	req.Len(rooms, 3)
	users, err := store.ListUsers(ctx)
	req.NoError(err)
	req.Len(users, 4)
}

func TestMemory_Unread_Counts(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store, now := seededMemory(t)

	rooms, err := store.ListRooms(ctx, "current_user", 100)
	req.NoError(err)
	req.Equal([]int{3, 1, 0}, []int{rooms[0].UnreadCount, rooms[1].UnreadCount, rooms[2].UnreadCount})

	// When the viewer reads room1
	req.NoError(store.MarkRead(ctx, "room1", "current_user", now))

	// Then only room1 is cleared
	count, err := store.UnreadCount(ctx, "room1", "current_user")
	req.NoError(err)
	req.Zero(count)
	count, err = store.UnreadCount(ctx, "room2", "current_user")
	req.NoError(err)
	req.Equal(1, count)

	// And a later message from someone else counts again
	_, err = store.CreateMessage(ctx, "room1", models.User{ID: "user1", Username: "Alice Johnson"}, "ping")
	req.NoError(err)
	count, err = store.UnreadCount(ctx, "room1", "current_user")
	req.NoError(err)
	req.Equal(1, count)
}

func TestMemory_Unread_After_Read_Mark(t *testing.T) {
	t.Run("should count a message posted at the same instant as the read mark", func(t *testing.T) {
		req := require.New(t)
		ctx := context.Background()
		store, now := seededMemory(t)

		// Given the viewer read room3 at the current clock instant
		req.NoError(store.MarkRead(ctx, "room3", "current_user", now))

		// When someone else posts without the clock moving
		msg, err := store.CreateMessage(ctx, "room3", models.User{ID: "user2", Username: "Bob Smith"}, "same tick")

		// Then the message lands after the read mark and is unread
		req.NoError(err)
		req.True(msg.Timestamp.After(now))
		count, err := store.UnreadCount(ctx, "room3", "current_user")
		req.NoError(err)
		req.Equal(1, count)
	})

	t.Run("should count a message when the read mark is ahead of the clock", func(t *testing.T) {
		req := require.New(t)
		ctx := context.Background()
		store, now := seededMemory(t)
		ahead := now.Add(time.Minute)

		// Given a read mark later than the store clock
		req.NoError(store.MarkRead(ctx, "room2", "current_user", ahead))

		// When someone else posts
		msg, err := store.CreateMessage(ctx, "room2", models.User{ID: "user3", Username: "Carol Davis"}, "behind")

		// Then it is still newer than the mark
		req.NoError(err)
		req.True(msg.Timestamp.After(ahead))
		count, err := store.UnreadCount(ctx, "room2", "current_user")
		req.NoError(err)
		req.Equal(1, count)
	})
}

func TestMemory_MarkRead_Unknown_Room(t *testing.T) {
	store, now := seededMemory(t)
	require.ErrorIs(t, store.MarkRead(context.Background(), "nope", "current_user", now), ErrNotFound)
}

func TestMemory_Messages(t *testing.T) {
	t.Run("should return the newest messages oldest first", func(t *testing.T) {
		req := require.New(t)
		ctx := context.Background()
		store, _ := seededMemory(t)

		msgs, err := store.GetMessages(ctx, "room1", 2)

		req.NoError(err)
		req.Len(msgs, 2)
		req.Equal("msg2", msgs[0].ID)
		req.Equal("msg3", msgs[1].ID)
		req.NotNil(msgs[1].Reactions)
	})

	t.Run("should append with increasing timestamps and bump activity", func(t *testing.T) {
		req := require.New(t)
		ctx := context.Background()
		store, now := seededMemory(t)
		me := models.User{ID: "current_user", Username: "You"}

		first, err := store.CreateMessage(ctx, "room3", me, "one")
		req.NoError(err)
		second, err := store.CreateMessage(ctx, "room3", me, "two")
		req.NoError(err)

		req.True(second.Timestamp.After(first.Timestamp))
		req.Equal("You", second.SenderName)
		room, err := store.GetRoom(ctx, "room3")
		req.NoError(err)
		req.Equal(second.Timestamp, room.LastActivity)
		req.False(room.LastActivity.Before(now))
	})

	t.Run("should reject unknown rooms", func(t *testing.T) {
		store, _ := seededMemory(t)
		_, err := store.CreateMessage(context.Background(), "nope", models.User{ID: "u"}, "x")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("should cap the recent count", func(t *testing.T) {
		req := require.New(t)
		store, now := seededMemory(t)

		count, err := store.CountRecentMessages(context.Background(), "room1", now.Add(-time.Hour), 2)
		req.NoError(err)
		req.Equal(2, count)
	})
}

func TestMemory_AddReaction(t *testing.T) {
	t.Run("should replace the user's earlier reaction", func(t *testing.T) {
		req := require.New(t)
		ctx := context.Background()
		store, _ := seededMemory(t)
		me := models.Reaction{UserID: "current_user", Username: "You"}

		me.Emoji = "👍"
		roomID, err := store.AddReaction(ctx, "msg3", me)
		req.NoError(err)
		req.Equal("room1", roomID)
		me.Emoji = "🚀"
		_, err = store.AddReaction(ctx, "msg3", me)
		req.NoError(err)

		msgs, err := store.GetMessages(ctx, "room1", 50)
		req.NoError(err)
		req.Equal([]models.Reaction{{Emoji: "🚀", UserID: "current_user", Username: "You"}}, msgs[2].Reactions)
	})

	t.Run("should keep other users' reactions", func(t *testing.T) {
		req := require.New(t)
		ctx := context.Background()
		store, _ := seededMemory(t)

		_, err := store.AddReaction(ctx, "msg1", models.Reaction{Emoji: "🎉", UserID: "current_user", Username: "You"})
		req.NoError(err)

		msgs, err := store.GetMessages(ctx, "room1", 50)
		req.NoError(err)
		req.Len(msgs[0].Reactions, 2)
	})

	t.Run("should report unknown messages", func(t *testing.T) {
		store, _ := seededMemory(t)
		_, err := store.AddReaction(context.Background(), "nope", models.Reaction{Emoji: "👍", UserID: "u"})
		require.ErrorIs(t, err, ErrNotFound)
	})
}
