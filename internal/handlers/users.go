package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/samber/lo"
	"github.com/umar/nexttalk-dash/internal/database"
	"github.com/umar/nexttalk-dash/internal/models"
)

type OnlineLister interface {
	OnlineUserIDs(ctx context.Context) ([]string, error)
}

func ListUsers(store database.Store, online OnlineLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := store.ListUsers(r.Context())
		if err != nil {
			slog.Error("failed to list users", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		var ids []string
		if online != nil {
			ids, err = online.OnlineUserIDs(r.Context())
			if err != nil {
				slog.Warn("failed to read presence", "error", err)
			}
		}
		users = lo.Map(users, func(u models.User, _ int) models.User {
			u.IsOnline = lo.Contains(ids, u.ID)
			return u
		})

		writeJSON(w, http.StatusOK, users)
	}
}
