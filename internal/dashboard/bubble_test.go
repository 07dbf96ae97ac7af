package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/umar/nexttalk-dash/internal/models"
)

func TestEmojiPicker(t *testing.T) {
	t.Run("should sit above its anchor", func(t *testing.T) {
		p := EmojiPicker{Anchor: Point{X: 10, Y: 100}}
		require.Equal(t, Point{X: 10, Y: 40}, p.Position())
		require.Len(t, p.Choices(), 8)
	})

	t.Run("should select then close and consume the event", func(t *testing.T) {
		req := require.New(t)
		var order []string
		p := EmojiPicker{
			OnSelect: func(e string) { order = append(order, "select:"+e) },
			OnClose:  func() { order = append(order, "close") },
		}

		req.True(p.Select("🔥"))
		req.Equal([]string{"select:🔥", "close"}, order)
	})

	t.Run("should ignore glyphs outside the catalog", func(t *testing.T) {
		req := require.New(t)
		called := false
		p := EmojiPicker{OnSelect: func(string) { called = true }}

		req.False(p.Select("🦀"))
		req.False(p.SelectIndex(8))
		req.False(called)
	})
}

func TestMessageBubble(t *testing.T) {
	session := Session{UserID: "me", Username: "You"}
	at := time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC)

	t.Run("should hide the sender of own messages", func(t *testing.T) {
		req := require.New(t)
		own := NewMessageBubble(models.Message{ID: "m1", SenderID: "me", SenderName: "You", Timestamp: at}, session, nil)
		other := NewMessageBubble(models.Message{ID: "m2", SenderID: "alice", SenderName: "Alice", Timestamp: at}, session, nil)

		req.False(own.ShowSender())
		req.Empty(own.View(time.UTC).Sender)
		req.True(other.ShowSender())
		req.Equal("Alice", other.View(time.UTC).Sender)
		req.Equal("09:05", other.Timestamp(time.UTC))
	})

	t.Run("should react and close the picker", func(t *testing.T) {
		req := require.New(t)
		var got []string
		b := NewMessageBubble(models.Message{ID: "m1", SenderID: "alice"}, session, func(id, emoji string) {
			got = append(got, id, emoji)
		})

		b.ToggleReactionPicker(Rect{X: 5, Y: 80, Width: 10, Height: 10})
		req.True(b.PickerOpen())
		req.Equal(Point{X: 5, Y: 20}, b.View(time.UTC).PickerPosition)

		req.True(b.Picker().SelectIndex(7))
		req.Equal([]string{"m1", "🚀"}, got)
		req.False(b.PickerOpen())
	})

	t.Run("should toggle the picker closed", func(t *testing.T) {
		b := NewMessageBubble(models.Message{ID: "m1"}, session, nil)
		b.ToggleReactionPicker(Rect{})
		b.ToggleReactionPicker(Rect{})
		require.False(t, b.PickerOpen())
	})

	t.Run("should label reactions with the reactor", func(t *testing.T) {
		b := NewMessageBubble(models.Message{
			ID:        "m1",
			Reactions: []models.Reaction{{Emoji: "🚀", UserID: "me", Username: "You"}},
		}, session, nil)
		require.Equal(t, []string{"🚀 You"}, b.ReactionBadges())
	})
}
