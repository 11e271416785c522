package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inkduel/inkduel-go/internal/api/apierr"
	"github.com/inkduel/inkduel-go/internal/api/request"
	"github.com/inkduel/inkduel-go/internal/api/response"
	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/services/review"
)

// ReviewHandler handles review submission endpoints
type ReviewHandler struct {
	reviewService *review.Service
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *review.Service) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Submit handles POST /api/v1/projects/{code}/reviews
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	project := model.ProjectCode(mux.Vars(r)["code"])

	var req request.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Player == "" {
		WriteError(w, apierr.NewInvalidRequestError("player name is required"))
		return
	}
	if req.Essay == "" {
		WriteError(w, apierr.NewInvalidRequestError("essay text is required"))
		return
	}

	balance, cooldown, err := h.reviewService.SubmitReview(r.Context(), project, req.Player, req.Essay)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SubmitReviewResponse{
		Balances:   response.BalancesFromModel(balance),
		CooldownMs: cooldown.Milliseconds(),
	})
}
