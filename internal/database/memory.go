package database

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/umar/nexttalk-dash/internal/models"
)

type memberState struct {
	userID     string
	lastReadAt time.Time
}

// Memory is a Store kept entirely in process memory. It backs local runs
// without PostgreSQL and the handler tests.
type Memory struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]models.User
	rooms    []*models.Room
	members  map[string][]*memberState
	messages map[string][]*models.Message
	byID     map[string]*models.Message
}

func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		now:      now,
		users:    make(map[string]models.User),
		members:  make(map[string][]*memberState),
		messages: make(map[string][]*models.Message),
		byID:     make(map[string]*models.Message),
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) findRoom(roomID string) (*models.Room, bool) {
	return lo.Find(m.rooms, func(r *models.Room) bool { return r.ID == roomID })
}

func (m *Memory) member(roomID, userID string) (*memberState, bool) {
	return lo.Find(m.members[roomID], func(s *memberState) bool { return s.userID == userID })
}

func (m *Memory) roomView(r *models.Room) models.Room {
	out := *r
	out.Participants = lo.Map(m.members[r.ID], func(s *memberState, _ int) string { return s.userID })
	return out
}

func (m *Memory) unread(roomID, userID string) int {
	var lastRead time.Time
	if s, ok := m.member(roomID, userID); ok {
		lastRead = s.lastReadAt
	}
	return lo.CountBy(m.messages[roomID], func(msg *models.Message) bool {
		return msg.SenderID != userID && msg.Timestamp.After(lastRead)
	})
}

func (m *Memory) ListRooms(_ context.Context, viewerID string, limit int) ([]models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]models.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		if len(rooms) == limit {
			break
		}
		view := m.roomView(r)
		view.UnreadCount = m.unread(r.ID, viewerID)
		rooms = append(rooms, view)
	}
	return rooms, nil
}

func (m *Memory) GetRoom(_ context.Context, roomID string) (*models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.findRoom(roomID)
	if !ok {
		return nil, ErrNotFound
	}
	view := m.roomView(r)
	return &view, nil
}

func copyMessage(msg *models.Message) models.Message {
	out := *msg
	out.Reactions = append([]models.Reaction{}, msg.Reactions...)
	return out
}

func (m *Memory) GetMessages(_ context.Context, roomID string, limit int) ([]models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.messages[roomID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return lo.Map(all, func(msg *models.Message, _ int) models.Message { return copyMessage(msg) }), nil
}

func (m *Memory) CountRecentMessages(_ context.Context, roomID string, since time.Time, limit int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := lo.CountBy(m.messages[roomID], func(msg *models.Message) bool {
		return !msg.Timestamp.Before(since)
	})
	return min(count, limit), nil
}

func (m *Memory) CreateMessage(_ context.Context, roomID string, sender models.User, content string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.findRoom(roomID)
	if !ok {
		return nil, ErrNotFound
	}

	// Timestamps stay strictly after the previous message and every read
	// mark in the room, so ordering and unread arithmetic never tie.
	ts := m.now().UTC()
	floor := lo.Map(m.members[roomID], func(s *memberState, _ int) time.Time { return s.lastReadAt })
	if msgs := m.messages[roomID]; len(msgs) > 0 {
		floor = append(floor, msgs[len(msgs)-1].Timestamp)
	}
	for _, t := range floor {
		if !ts.After(t) {
			ts = t.Add(time.Microsecond)
		}
	}

	msg := &models.Message{
		ID:         uuid.NewString(),
		RoomID:     roomID,
		SenderID:   sender.ID,
		SenderName: sender.Username,
		Content:    content,
		Timestamp:  ts,
		Reactions:  []models.Reaction{},
	}
	m.messages[roomID] = append(m.messages[roomID], msg)
	m.byID[msg.ID] = msg
	room.LastActivity = ts

	if _, ok := m.member(roomID, sender.ID); !ok {
		m.members[roomID] = append(m.members[roomID], &memberState{userID: sender.ID, lastReadAt: ts})
	}

	out := copyMessage(msg)
	return &out, nil
}

func (m *Memory) AddReaction(_ context.Context, messageID string, reaction models.Reaction) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.byID[messageID]
	if !ok {
		return "", ErrNotFound
	}
	msg.Reactions = append(lo.Reject(msg.Reactions, func(r models.Reaction, _ int) bool {
		return r.UserID == reaction.UserID
	}), reaction)
	return msg.RoomID, nil
}

func (m *Memory) MarkRead(_ context.Context, roomID, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.findRoom(roomID); !ok {
		return ErrNotFound
	}
	if s, ok := m.member(roomID, userID); ok {
		s.lastReadAt = at
		return nil
	}
	m.members[roomID] = append(m.members[roomID], &memberState{userID: userID, lastReadAt: at})
	return nil
}

func (m *Memory) UnreadCount(_ context.Context, roomID, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unread(roomID, userID), nil
}

func (m *Memory) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := lo.Values(m.users)
	slices.SortFunc(users, func(a, b models.User) int { return strings.Compare(a.ID, b.ID) })
	return users, nil
}

func (m *Memory) GetUser(_ context.Context, userID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) Seed(_ context.Context, data SeedData) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.rooms) > 0 {
		return false, nil
	}

	now := m.now().UTC()
	for _, u := range data.Users {
		m.users[u.ID] = u
	}
	for i, r := range data.Rooms {
		m.rooms = append(m.rooms, &models.Room{
			ID:           r.ID,
			Name:         r.Name,
			Description:  r.Description,
			CreatedAt:    now.Add(time.Duration(i-len(data.Rooms)) * time.Second),
			LastActivity: now,
		})
		m.members[r.ID] = lo.Map(r.Participants, func(id string, _ int) *memberState {
			return &memberState{userID: id}
		})
	}
	for _, msg := range data.Messages {
		stored := copyMessage(&msg)
		if stored.Reactions == nil {
			stored.Reactions = []models.Reaction{}
		}
		m.messages[msg.RoomID] = append(m.messages[msg.RoomID], &stored)
		m.byID[msg.ID] = &stored
	}
	return true, nil
}
