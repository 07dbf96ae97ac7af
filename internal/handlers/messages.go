package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/umar/nexttalk-dash/internal/auth"
	"github.com/umar/nexttalk-dash/internal/chat"
	"github.com/umar/nexttalk-dash/internal/database"
	"github.com/umar/nexttalk-dash/internal/models"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 100
)

func GetMessages(store database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]

		limit := defaultMessageLimit
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= maxMessageLimit {
				limit = l
			}
		}

		messages, err := store.GetMessages(r.Context(), roomID, limit)
		if err != nil {
			slog.Error("failed to get messages", "error", err, "room_id", roomID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, messages)
	}
}

func SendMessage(store database.Store, pub chat.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.MessageCreate
		if msg, ok := decodeBody(r, &req); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}

		viewer, _ := auth.ViewerFromContext(r.Context())
		msg, err := store.CreateMessage(r.Context(), req.RoomID, viewer, req.Content)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeError(w, http.StatusNotFound, "room not found")
				return
			}
			slog.Error("failed to create message", "error", err, "room_id", req.RoomID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		chat.PublishMessage(r.Context(), pub, msg)
		publishUnreadUpdates(r, store, pub, msg.RoomID, viewer.ID)

		writeJSON(w, http.StatusOK, msg)
	}
}

func publishUnreadUpdates(r *http.Request, store database.Store, pub chat.Publisher, roomID, senderID string) {
	if pub == nil {
		return
	}
	room, err := store.GetRoom(r.Context(), roomID)
	if err != nil {
		return
	}
	for _, member := range room.Participants {
		if member == senderID {
			continue
		}
		count, err := store.UnreadCount(r.Context(), roomID, member)
		if err != nil {
			continue
		}
		chat.PublishUnread(r.Context(), pub, roomID, member, count)
	}
}

func AddReaction(store database.Store, pub chat.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ReactionCreate
		if msg, ok := decodeBody(r, &req); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		viewer, _ := auth.ViewerFromContext(r.Context())
		reaction := models.Reaction{Emoji: req.Emoji, UserID: viewer.ID, Username: viewer.Username}
		roomID, err := store.AddReaction(r.Context(), req.MessageID, reaction)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Message not found")
				return
			}
			slog.Error("failed to add reaction", "error", err, "message_id", req.MessageID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		chat.PublishReaction(r.Context(), pub, roomID, req.MessageID, reaction)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
