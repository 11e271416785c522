package handler

import (
	"net/http"

	"github.com/inkduel/inkduel-go/internal/api/apierr"
)

// WriteError writes an error response using the shared API error mapping
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}
