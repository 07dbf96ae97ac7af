package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/umar/nexttalk-dash/internal/auth"
	"github.com/umar/nexttalk-dash/internal/chat"
	"github.com/umar/nexttalk-dash/internal/database"
)

const maxRooms = 100

func ListRooms(store database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := auth.ViewerFromContext(r.Context())
		rooms, err := store.ListRooms(r.Context(), viewer.ID, maxRooms)
		if err != nil {
			slog.Error("failed to list rooms", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, rooms)
	}
}

// MarkRead moves the viewer's read mark of a room to now, which zeroes the
// room's unread count for that viewer.
func MarkRead(store database.Store, pub chat.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]
		viewer, _ := auth.ViewerFromContext(r.Context())

		if err := store.MarkRead(r.Context(), roomID, viewer.ID, time.Now().UTC()); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeError(w, http.StatusNotFound, "room not found")
				return
			}
			slog.Error("failed to mark room read", "error", err, "room_id", roomID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		chat.PublishUnread(r.Context(), pub, roomID, viewer.ID, 0)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
