package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inkduel/inkduel-go/internal/api/apierr"
	"github.com/inkduel/inkduel-go/internal/model"
	"github.com/inkduel/inkduel-go/internal/services/notify"
)

// EventsHandler serves the per-player notification stream
type EventsHandler struct {
	hubManager *notify.HubManager
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hubManager *notify.HubManager) *EventsHandler {
	return &EventsHandler{hubManager: hubManager}
}

// Stream handles GET /api/v1/projects/{code}/events?player=NAME
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	project := model.ProjectCode(mux.Vars(r)["code"])

	playerName := r.URL.Query().Get("player")
	if playerName == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("player query parameter is required"))
		return
	}

	hub := h.hubManager.GetOrCreateHub(project)
	notify.ServeSSE(w, r, hub, model.NormalizePlayerKey(playerName))
}
