package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/umar/nexttalk-dash/internal/auth"
	"github.com/umar/nexttalk-dash/internal/chat"
	"github.com/umar/nexttalk-dash/internal/database"
	"github.com/umar/nexttalk-dash/internal/middleware"
	"github.com/umar/nexttalk-dash/internal/models"
)

type Deps struct {
	Store       database.Store
	Summarizer  Summarizer
	Publisher   chat.Publisher
	Online      OnlineLister
	Hub         *chat.Hub
	JWTSecret   string
	TokenTTL    time.Duration
	Viewer      models.User
	CORSOrigins []string
	RateLimiter *middleware.RateLimiter
}

func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.CORS(d.CORSOrigins))

	router.HandleFunc("/health", Health).Methods("GET", "OPTIONS")
	if d.Hub != nil {
		router.HandleFunc("/ws", chat.ServeWS(d.Hub, d.JWTSecret, d.Viewer)).Methods("GET")
	}

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.IdentityMiddleware(d.JWTSecret, d.Viewer))
	if d.RateLimiter != nil {
		api.Use(d.RateLimiter.Middleware)
	}

	api.HandleFunc("/", Root).Methods("GET", "OPTIONS")
	api.HandleFunc("/auth/me", auth.MeHandler()).Methods("GET", "OPTIONS")
	api.HandleFunc("/auth/token", auth.TokenHandler(d.Store, d.JWTSecret, d.TokenTTL)).Methods("POST", "OPTIONS")
	api.HandleFunc("/users", ListUsers(d.Store, d.Online)).Methods("GET", "OPTIONS")
	api.HandleFunc("/rooms", ListRooms(d.Store)).Methods("GET", "OPTIONS")
	api.HandleFunc("/rooms/{id}/messages", GetMessages(d.Store)).Methods("GET", "OPTIONS")
	api.HandleFunc("/rooms/{id}/mark-read", MarkRead(d.Store, d.Publisher)).Methods("POST", "OPTIONS")
	api.HandleFunc("/messages", SendMessage(d.Store, d.Publisher)).Methods("POST", "OPTIONS")
	api.HandleFunc("/reactions", AddReaction(d.Store, d.Publisher)).Methods("POST", "OPTIONS")
	api.HandleFunc("/summary/{id}", GetSummary(d.Summarizer)).Methods("GET", "OPTIONS")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return router
}
