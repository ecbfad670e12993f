package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/textworld/internal/api/handler"
	"github.com/mcoot/textworld/internal/api/middleware"
	"github.com/mcoot/textworld/internal/api/response"
	"github.com/mcoot/textworld/internal/dependencies/ids"
	rootmw "github.com/mcoot/textworld/internal/middleware"
	"github.com/mcoot/textworld/internal/services/command"
)

// OnlineCounter reports how many players are logged in
type OnlineCounter interface {
	OnlineCount() int
}

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger    *slog.Logger
	Commands  command.Service
	Online    OnlineCounter
	IDs       ids.Generator
	RateLimit rootmw.RateLimitConfig
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.Commands)
	gameHandler := handler.NewGameHandler(cfg.Commands)

	// Create middleware
	requestIDMiddleware := rootmw.RequestID(cfg.IDs)
	loggingMiddleware := rootmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	rateLimitMiddleware := middleware.RateLimit(rootmw.NewRateLimiter(cfg.RateLimit))

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(requestIDMiddleware)
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.Use(rateLimitMiddleware)

	// Account routes
	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/players/join", playerHandler.Join).Methods(http.MethodPost)

	players := api.PathPrefix("/players/{name}").Subrouter()
	players.HandleFunc("", playerHandler.Delete).Methods(http.MethodDelete)
	players.HandleFunc("/leave", playerHandler.Leave).Methods(http.MethodPost)
	players.HandleFunc("/heartbeat", playerHandler.Heartbeat).Methods(http.MethodPost)
	players.HandleFunc("/password", playerHandler.ResetPassword).Methods(http.MethodPut)
	players.HandleFunc("/password/verify", playerHandler.VerifyPassword).Methods(http.MethodPost)
	players.HandleFunc("/recovery/{index}/question", playerHandler.Question).Methods(http.MethodGet)
	players.HandleFunc("/recovery/{index}/answer", playerHandler.Answer).Methods(http.MethodGet)

	// Gameplay routes
	players.HandleFunc("/look", gameHandler.Look).Methods(http.MethodGet)
	players.HandleFunc("/left", gameHandler.Left).Methods(http.MethodPost)
	players.HandleFunc("/right", gameHandler.Right).Methods(http.MethodPost)
	players.HandleFunc("/say", gameHandler.Say).Methods(http.MethodPost)
	players.HandleFunc("/move", gameHandler.Move).Methods(http.MethodPost)
	players.HandleFunc("/pickup", gameHandler.Pickup).Methods(http.MethodPost)
	players.HandleFunc("/pickup-all", gameHandler.PickupAll).Methods(http.MethodPost)
	players.HandleFunc("/inventory", gameHandler.Inventory).Methods(http.MethodGet)
	players.HandleFunc("/whiteboard", gameHandler.ReadWhiteboard).Methods(http.MethodGet)
	players.HandleFunc("/whiteboard", gameHandler.WriteWhiteboard).Methods(http.MethodPut)
	players.HandleFunc("/whiteboard", gameHandler.EraseWhiteboard).Methods(http.MethodDelete)

	// Friend routes
	players.HandleFunc("/friends", gameHandler.AddFriend).Methods(http.MethodPost)
	players.HandleFunc("/friends/online", gameHandler.OnlineFriends).Methods(http.MethodGet)
	players.HandleFunc("/friends/{friend}", gameHandler.RemoveFriend).Methods(http.MethodDelete)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler(cfg.Online)).Methods(http.MethodGet)

	return r
}

func healthHandler(online OnlineCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := response.HealthResponse{Status: "ok"}
		if online != nil {
			resp.Online = online.OnlineCount()
		}
		response.JSON(w, http.StatusOK, resp)
	}
}
