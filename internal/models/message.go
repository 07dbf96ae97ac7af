package models

import "time"

type Reaction struct {
	Emoji    string `json:"emoji"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type Message struct {
	ID         string     `json:"id"`
	RoomID     string     `json:"room_id"`
	SenderID   string     `json:"sender_id"`
	SenderName string     `json:"sender_name"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	Reactions  []Reaction `json:"reactions"`
	IsSystem   bool       `json:"is_system"`
}

type MessageCreate struct {
	RoomID  string `json:"room_id" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type ReactionCreate struct {
	MessageID string `json:"message_id" validate:"required"`
	Emoji     string `json:"emoji" validate:"required,max=32"`
}
