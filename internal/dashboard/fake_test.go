package dashboard

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/umar/nexttalk-dash/internal/models"
)

type fakeBackend struct {
	mu       sync.Mutex
	rooms    []models.Room
	messages map[string][]models.Message
	summary  *models.Summary
	sendErr  error
	reactErr error
	readErr  error
	gates    map[string]chan struct{}
	calls    []string
}

func newFakeBackend() *fakeBackend {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &fakeBackend{
		rooms: []models.Room{
			{ID: "r1", Name: "General", UnreadCount: 3},
			{ID: "r2", Name: "Random", UnreadCount: 1},
		},
		messages: map[string][]models.Message{
			"r1": {
				{ID: "m1", RoomID: "r1", SenderID: "alice", SenderName: "Alice", Content: "hello", Timestamp: now},
				{ID: "m2", RoomID: "r1", SenderID: "me", SenderName: "You", Content: "hey", Timestamp: now.Add(time.Minute)},
			},
			"r2": {
				{ID: "m3", RoomID: "r2", SenderID: "bob", SenderName: "Bob", Content: "yo", Timestamp: now},
			},
		},
		summary: &models.Summary{SummaryPoints: []string{"a", "b"}, MessageCount: 2, TimeRange: "Last 24 hours"},
		gates:   make(map[string]chan struct{}),
	}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeBackend) has(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

// block makes Messages for roomID wait until the returned func is called.
func (f *fakeBackend) block(roomID string) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gates[roomID] = gate
	return func() { close(gate) }
}

func (f *fakeBackend) Rooms(ctx context.Context) ([]models.Room, error) {
	f.record("rooms")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Room(nil), f.rooms...), nil
}

func (f *fakeBackend) Messages(ctx context.Context, roomID string) ([]models.Message, error) {
	f.record("messages:" + roomID)
	f.mu.Lock()
	gate := f.gates[roomID]
	delete(f.gates, roomID)
	msgs := append([]models.Message(nil), f.messages[roomID]...)
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return msgs, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, roomID, content string) (*models.Message, error) {
	f.record("send:" + roomID + ":" + content)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	msg := models.Message{ID: "new", RoomID: roomID, SenderID: "me", SenderName: "You", Content: content, Timestamp: time.Now()}
	f.messages[roomID] = append(f.messages[roomID], msg)
	return &msg, nil
}

func (f *fakeBackend) AddReaction(ctx context.Context, messageID, emoji string) error {
	f.record("react:" + messageID + ":" + emoji)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reactErr != nil {
		return f.reactErr
	}
	for roomID, msgs := range f.messages {
		for i := range msgs {
			if msgs[i].ID == messageID {
				f.messages[roomID][i].Reactions = []models.Reaction{{Emoji: emoji, UserID: "me", Username: "You"}}
			}
		}
	}
	return nil
}

func (f *fakeBackend) MarkRead(ctx context.Context, roomID string) error {
	f.record("markread:" + roomID)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return f.readErr
	}
	for i := range f.rooms {
		if f.rooms[i].ID == roomID {
			f.rooms[i].UnreadCount = 0
		}
	}
	return nil
}

func (f *fakeBackend) Summary(ctx context.Context, roomID string) (*models.Summary, error) {
	f.record("summary:" + roomID)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summary, nil
}

type fakeView struct {
	renders atomic.Int32
	scrolls atomic.Int32
}

func (v *fakeView) Render(State) { v.renders.Add(1) }

func (v *fakeView) ScrollToEnd() { v.scrolls.Add(1) }
