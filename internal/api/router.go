package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inkduel/inkduel-go/internal/api/handler"
	apimiddleware "github.com/inkduel/inkduel-go/internal/api/middleware"
	"github.com/inkduel/inkduel-go/internal/middleware"
	"github.com/inkduel/inkduel-go/internal/services/challenge"
	"github.com/inkduel/inkduel-go/internal/services/ledger"
	"github.com/inkduel/inkduel-go/internal/services/notify"
	"github.com/inkduel/inkduel-go/internal/services/presence"
	"github.com/inkduel/inkduel-go/internal/services/review"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	LedgerService   *ledger.Service
	PresenceService *presence.Service
	ChallengeEngine *challenge.Engine
	ReviewService   *review.Service
	HubManager      *notify.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.LedgerService, cfg.PresenceService)
	challengeHandler := handler.NewChallengeHandler(cfg.ChallengeEngine)
	reviewHandler := handler.NewReviewHandler(cfg.ReviewService)
	eventsHandler := handler.NewEventsHandler(cfg.HubManager)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Project-scoped routes
	projects := api.PathPrefix("/projects/{code}").Subrouter()
	projects.HandleFunc("/players", playerHandler.Init).Methods(http.MethodPost)
	projects.HandleFunc("/players/active", playerHandler.ListActive).Methods(http.MethodGet)
	projects.HandleFunc("/players/{player}", playerHandler.GetBalance).Methods(http.MethodGet)
	projects.HandleFunc("/heartbeat", playerHandler.Heartbeat).Methods(http.MethodPost)
	projects.HandleFunc("/challenges", challengeHandler.Initiate).Methods(http.MethodPost)
	projects.HandleFunc("/challenges/{id}", challengeHandler.Get).Methods(http.MethodGet)
	projects.HandleFunc("/challenges/{id}/respond", challengeHandler.Respond).Methods(http.MethodPost)
	projects.HandleFunc("/reviews", reviewHandler.Submit).Methods(http.MethodPost)
	projects.HandleFunc("/events", eventsHandler.Stream).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
