package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/umar/nexttalk-dash/internal/models"
)

type Summarizer interface {
	Summarize(ctx context.Context, roomID string) (models.Summary, error)
}

func GetSummary(s Summarizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)["id"]
		summary, err := s.Summarize(r.Context(), roomID)
		if err != nil {
			slog.Error("failed to summarize room", "error", err, "room_id", roomID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
