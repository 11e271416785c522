package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inkduel/inkduel-go/internal/api/apierr"
	"github.com/inkduel/inkduel-go/internal/api/request"
	"github.com/inkduel/inkduel-go/internal/api/response"
	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/services/ledger"
	"github.com/inkduel/inkduel-go/internal/services/presence"
)

// PlayerHandler handles player balance and presence endpoints
type PlayerHandler struct {
	ledgerService   *ledger.Service
	presenceService *presence.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(ledgerService *ledger.Service, presenceService *presence.Service) *PlayerHandler {
	return &PlayerHandler{
		ledgerService:   ledgerService,
		presenceService: presenceService,
	}
}

// Init handles POST /api/v1/projects/{code}/players
func (h *PlayerHandler) Init(w http.ResponseWriter, r *http.Request) {
	project := model.ProjectCode(mux.Vars(r)["code"])

	var req request.InitPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Player == "" {
		WriteError(w, apierr.NewInvalidRequestError("player name is required"))
		return
	}

	balance, err := h.ledgerService.InitPlayer(r.Context(), project, req.Player)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BalancesFromModel(balance))
}

// Heartbeat handles POST /api/v1/projects/{code}/heartbeat
func (h *PlayerHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	project := model.ProjectCode(mux.Vars(r)["code"])

	var req request.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Player == "" {
		WriteError(w, apierr.NewInvalidRequestError("player name is required"))
		return
	}

	if err := h.presenceService.Heartbeat(r.Context(), project, req.Player, req.SessionID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// ListActive handles GET /api/v1/projects/{code}/players/active
func (h *PlayerHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	project := model.ProjectCode(mux.Vars(r)["code"])
	excluding := model.NormalizePlayerKey(r.URL.Query().Get("excluding"))

	players, err := h.presenceService.ListActive(r.Context(), project, excluding)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ActivePlayersFromModel(players))
}

// GetBalance handles GET /api/v1/projects/{code}/players/{player}
func (h *PlayerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project := model.ProjectCode(vars["code"])
	key := model.NormalizePlayerKey(vars["player"])

	balance, err := h.ledgerService.GetBalance(r.Context(), project, key)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.BalancesFromModel(balance))
}
