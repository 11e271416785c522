package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inkduel/inkduel-go/internal/api/apierr"
	"github.com/inkduel/inkduel-go/internal/api/request"
	"github.com/inkduel/inkduel-go/internal/api/response"
	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/services/challenge"
)

// ChallengeHandler handles challenge endpoints
type ChallengeHandler struct {
	engine *challenge.Engine
}

// NewChallengeHandler creates a new challenge handler
func NewChallengeHandler(engine *challenge.Engine) *ChallengeHandler {
	return &ChallengeHandler{engine: engine}
}

// Initiate handles POST /api/v1/projects/{code}/challenges
func (h *ChallengeHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	project := model.ProjectCode(mux.Vars(r)["code"])

	var req request.InitiateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Attacker == "" || req.Target == "" {
		WriteError(w, apierr.NewInvalidRequestError("attacker and target are required"))
		return
	}

	ch, attackerBalance, err := h.engine.Initiate(r.Context(), project, req.Attacker, req.Target)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.InitiateChallengeResponse{
		ChallengeID:      string(ch.ID),
		ExpiresAt:        ch.ExpiresAt,
		AttackerBalances: response.BalancesFromModel(attackerBalance),
	})
}

// Respond handles POST /api/v1/projects/{code}/challenges/{id}/respond
func (h *ChallengeHandler) Respond(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	project := model.ProjectCode(vars["code"])
	id := model.ChallengeID(vars["id"])

	var req request.RespondChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	ch, targetBalance, err := h.engine.Respond(r.Context(), project, id, req.UseShield)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RespondChallengeResponse{
		Defended:  ch.Status == model.ChallengeDefended,
		Challenge: response.ChallengeFromModel(ch),
		Balances:  response.BalancesFromModel(targetBalance),
	})
}

// Get handles GET /api/v1/projects/{code}/challenges/{id}
func (h *ChallengeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.ChallengeID(mux.Vars(r)["id"])

	ch, err := h.engine.GetChallenge(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ChallengeFromModel(ch))
}
