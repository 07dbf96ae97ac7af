package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/umar/nexttalk-dash/internal/models"
)

type Postgres struct {
	db *sql.DB
}

func InitDB(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// --- Rooms ---

func (p *Postgres) ListRooms(ctx context.Context, viewerID string, limit int) ([]models.Room, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.description, r.created_at, r.last_activity,
		       ARRAY(SELECT rm.user_id FROM room_members rm WHERE rm.room_id = r.id ORDER BY rm.joined_at, rm.user_id),
		       (SELECT COUNT(*) FROM messages m
		        WHERE m.room_id = r.id AND m.sender_id <> $1
		          AND m.created_at > COALESCE(
		              (SELECT rm.last_read_at FROM room_members rm WHERE rm.room_id = r.id AND rm.user_id = $1),
		              'epoch'::timestamptz))
		FROM rooms r
		ORDER BY r.created_at, r.id
		LIMIT $2
	`, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []models.Room{}
	for rows.Next() {
		var r models.Room
		var participants []string
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.LastActivity,
			pq.Array(&participants), &r.UnreadCount); err != nil {
			return nil, err
		}
		r.Participants = nonNil(participants)
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (p *Postgres) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var r models.Room
	var participants []string
	err := p.db.QueryRowContext(ctx, `
		SELECT r.id, r.name, r.description, r.created_at, r.last_activity,
		       ARRAY(SELECT rm.user_id FROM room_members rm WHERE rm.room_id = r.id ORDER BY rm.joined_at, rm.user_id)
		FROM rooms r WHERE r.id = $1
	`, roomID).Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.LastActivity, pq.Array(&participants))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	r.Participants = nonNil(participants)
	return &r, nil
}

// --- Messages ---

func (p *Postgres) GetMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, room_id, sender_id, sender_name, content, created_at, is_system
		FROM messages WHERE room_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2
	`, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.SenderName, &m.Content,
			&m.Timestamp, &m.IsSystem); err != nil {
			return nil, err
		}
		m.Reactions = []models.Reaction{}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Oldest first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	if err := p.attachReactions(ctx, messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (p *Postgres) attachReactions(ctx context.Context, messages []models.Message) error {
	if len(messages) == 0 {
		return nil
	}
	ids := make([]string, len(messages))
	index := make(map[string]int, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
		index[m.ID] = i
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT message_id, emoji, user_id, username FROM reactions
		WHERE message_id = ANY($1)
		ORDER BY created_at, user_id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var messageID string
		var r models.Reaction
		if err := rows.Scan(&messageID, &r.Emoji, &r.UserID, &r.Username); err != nil {
			return err
		}
		if i, ok := index[messageID]; ok {
			messages[i].Reactions = append(messages[i].Reactions, r)
		}
	}
	return rows.Err()
}

func (p *Postgres) CountRecentMessages(ctx context.Context, roomID string, since time.Time, limit int) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
		    SELECT 1 FROM messages WHERE room_id = $1 AND created_at >= $2 LIMIT $3
		) recent
	`, roomID, since, limit).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func (p *Postgres) CreateMessage(ctx context.Context, roomID string, sender models.User, content string) (*models.Message, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	m := models.Message{
		ID:         uuid.NewString(),
		RoomID:     roomID,
		SenderID:   sender.ID,
		SenderName: sender.Username,
		Content:    content,
		Reactions:  []models.Reaction{},
	}
	// created_at stays strictly after every read mark and earlier message in
	// the room, so a message never ties with a mark-read and counts as read.
	err = tx.QueryRowContext(ctx, `
		INSERT INTO messages (id, room_id, sender_id, sender_name, content, created_at)
		SELECT $1, r.id, $3, $4, $5, GREATEST(
		    NOW(),
		    (SELECT MAX(rm.last_read_at) FROM room_members rm WHERE rm.room_id = r.id) + INTERVAL '1 microsecond',
		    (SELECT MAX(m.created_at) FROM messages m WHERE m.room_id = r.id) + INTERVAL '1 microsecond'
		)
		FROM rooms r WHERE r.id = $2
		RETURNING created_at
	`, m.ID, roomID, sender.ID, sender.Username, content).Scan(&m.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rooms SET last_activity = $2 WHERE id = $1`, roomID, m.Timestamp); err != nil {
		return nil, fmt.Errorf("failed to update room activity: %w", err)
	}
	// Posting joins the room; the sender has read everything up to its own message.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO room_members (room_id, user_id, last_read_at) VALUES ($1, $2, $3)
		ON CONFLICT (room_id, user_id) DO NOTHING
	`, roomID, sender.ID, m.Timestamp); err != nil {
		return nil, fmt.Errorf("failed to add room member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}
	return &m, nil
}

// --- Reactions ---

func (p *Postgres) AddReaction(ctx context.Context, messageID string, reaction models.Reaction) (string, error) {
	var roomID string
	err := p.db.QueryRowContext(ctx, `
		WITH target AS (SELECT id, room_id FROM messages WHERE id = $1),
		upserted AS (
		    INSERT INTO reactions (message_id, user_id, username, emoji)
		    SELECT id, $2, $3, $4 FROM target
		    ON CONFLICT (message_id, user_id)
		    DO UPDATE SET emoji = EXCLUDED.emoji, username = EXCLUDED.username, created_at = NOW()
		)
		SELECT room_id FROM target
	`, messageID, reaction.UserID, reaction.Username, reaction.Emoji).Scan(&roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to add reaction: %w", err)
	}
	return roomID, nil
}

// --- Read Tracking ---

func (p *Postgres) MarkRead(ctx context.Context, roomID, userID string, at time.Time) error {
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO room_members (room_id, user_id, last_read_at)
		SELECT r.id, $2, $3 FROM rooms r WHERE r.id = $1
		ON CONFLICT (room_id, user_id) DO UPDATE SET last_read_at = EXCLUDED.last_read_at
	`, roomID, userID, at)
	if err != nil {
		return fmt.Errorf("failed to mark room read: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) UnreadCount(ctx context.Context, roomID, userID string) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages m
		WHERE m.room_id = $1 AND m.sender_id <> $2
		  AND m.created_at > COALESCE(
		      (SELECT rm.last_read_at FROM room_members rm WHERE rm.room_id = $1 AND rm.user_id = $2),
		      'epoch'::timestamptz)
	`, roomID, userID).Scan(&count)
	return count, err
}

// --- Users ---

func (p *Postgres) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, username, avatar_url FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.AvatarURL); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (p *Postgres) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	err := p.db.QueryRowContext(ctx,
		`SELECT id, username, avatar_url FROM users WHERE id = $1`, userID,
	).Scan(&u.ID, &u.Username, &u.AvatarURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// --- Seed ---

func (p *Postgres) Seed(ctx context.Context, data SeedData) (bool, error) {
	var count int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count rooms: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, u := range data.Users {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, avatar_url) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			u.ID, u.Username, u.AvatarURL); err != nil {
			return false, fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
	}
	for i, r := range data.Rooms {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rooms (id, name, description, created_at, last_activity)
			VALUES ($1, $2, $3, NOW() - make_interval(secs => $4), NOW())
		`, r.ID, r.Name, r.Description, len(data.Rooms)-i); err != nil {
			return false, fmt.Errorf("failed to seed room %s: %w", r.ID, err)
		}
		for _, userID := range r.Participants {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO room_members (room_id, user_id) VALUES ($1, $2)`, r.ID, userID); err != nil {
				return false, fmt.Errorf("failed to seed member %s: %w", userID, err)
			}
		}
	}
	for _, m := range data.Messages {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (id, room_id, sender_id, sender_name, content, created_at, is_system)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, m.ID, m.RoomID, m.SenderID, m.SenderName, m.Content, m.Timestamp, m.IsSystem); err != nil {
			return false, fmt.Errorf("failed to seed message %s: %w", m.ID, err)
		}
		for _, r := range m.Reactions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO reactions (message_id, user_id, username, emoji) VALUES ($1, $2, $3, $4)`,
				m.ID, r.UserID, r.Username, r.Emoji); err != nil {
				return false, fmt.Errorf("failed to seed reaction: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit seed: %w", err)
	}
	return true, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
