package database

import (
	"context"
	"errors"
	"time"

	"github.com/umar/nexttalk-dash/internal/models"
)

var ErrNotFound = errors.New("not found")

// Store is the persistence surface used by the HTTP handlers and the
// summary generator. Implementations must be safe for concurrent use.
type Store interface {
	ListRooms(ctx context.Context, viewerID string, limit int) ([]models.Room, error)
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	GetMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error)
	CountRecentMessages(ctx context.Context, roomID string, since time.Time, limit int) (int, error)
	CreateMessage(ctx context.Context, roomID string, sender models.User, content string) (*models.Message, error)
	// AddReaction stores the reaction, replacing any earlier reaction of the
	// same user on that message, and returns the message's room id.
	AddReaction(ctx context.Context, messageID string, reaction models.Reaction) (string, error)
	MarkRead(ctx context.Context, roomID, userID string, at time.Time) error
	UnreadCount(ctx context.Context, roomID, userID string) (int, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	// Seed inserts data only when the store holds no rooms yet.
	Seed(ctx context.Context, data SeedData) (bool, error)
	Close() error
}
