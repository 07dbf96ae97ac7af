package database

import (
	"time"

	"github.com/umar/nexttalk-dash/internal/models"
)

type SeedRoom struct {
	ID           string
	Name         string
	Description  string
	Participants []string
}

type SeedData struct {
	Users    []models.User
	Rooms    []SeedRoom
	Messages []models.Message
}

// DemoData returns the rooms, users and messages a fresh backend starts
// with. Messages are spaced one minute apart and all lie before now, so a
// mark-read issued right after startup covers every one of them.
func DemoData(now time.Time) SeedData {
	at := func(i int) time.Time { return now.Add(time.Duration(i-4) * time.Minute) }
	return SeedData{
		Users: []models.User{
			{ID: "user1", Username: "Alice Johnson"},
			{ID: "user2", Username: "Bob Smith"},
			{ID: "user3", Username: "Carol Davis"},
			{ID: "current_user", Username: "You"},
		},
		Rooms: []SeedRoom{
			{ID: "room1", Name: "General Discussion", Description: "Main team chat",
				Participants: []string{"user1", "user2", "user3", "current_user"}},
			{ID: "room2", Name: "Project Alpha", Description: "Alpha project coordination",
				Participants: []string{"user1", "current_user"}},
			{ID: "room3", Name: "Random", Description: "Casual conversations",
				Participants: []string{"user2", "user3", "current_user"}},
		},
		Messages: []models.Message{
			{
				ID: "msg1", RoomID: "room1", SenderID: "user1", SenderName: "Alice Johnson",
				Content:   "Hey everyone! How's the project coming along?",
				Timestamp: at(0),
				Reactions: []models.Reaction{{Emoji: "👍", UserID: "user2", Username: "Bob Smith"}},
			},
			{
				ID: "msg2", RoomID: "room1", SenderID: "user2", SenderName: "Bob Smith",
				Content:   "Making good progress! Just finished the backend API.",
				Timestamp: at(1),
				Reactions: []models.Reaction{{Emoji: "🚀", UserID: "user1", Username: "Alice Johnson"}},
			},
			{
				ID: "msg3", RoomID: "room1", SenderID: "user3", SenderName: "Carol Davis",
				Content:   "Awesome work team! Frontend is looking great too.",
				Timestamp: at(2),
			},
			{
				ID: "msg4", RoomID: "room2", SenderID: "user1", SenderName: "Alice Johnson",
				Content:   "Can we schedule a review meeting for tomorrow?",
				Timestamp: at(3),
			},
		},
	}
}
