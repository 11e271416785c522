package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/inkduel/inkduel-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeProjectNotFound     = "PROJECT_NOT_FOUND"
	CodeInsufficientTokens  = "INSUFFICIENT_TOKENS"
	CodeNoStealableTokens   = "NO_STEALABLE_TOKENS"
	CodeDuplicateChallenge  = "DUPLICATE_CHALLENGE"
	CodeChallengeNotFound   = "CHALLENGE_NOT_FOUND"
	CodeAlreadyResolved     = "ALREADY_RESOLVED"
	CodeCooldownActive      = "COOLDOWN_ACTIVE"
	CodeNoReviewTokens      = "NO_REVIEW_TOKENS"
	CodeGradingFailure      = "GRADING_FAILURE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Cooldown errors carry the remaining time
	var cooldownErr *model.CooldownActiveError
	if errors.As(err, &cooldownErr) {
		return &httpError{http.StatusTooManyRequests, APIError{
			Code:    CodeCooldownActive,
			Message: "Review cooldown is still active",
			Details: map[string]any{"remaining_ms": cooldownErr.RemainingMillis()},
		}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodePlayerNotFound, Message: "Player not found"}}
	case errors.Is(err, model.ErrProjectNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeProjectNotFound, Message: "Project not found"}}
	case errors.Is(err, model.ErrInsufficientResource):
		return &httpError{http.StatusConflict, APIError{Code: CodeInsufficientTokens, Message: "Not enough tokens for this action"}}
	case errors.Is(err, model.ErrNoStealableResource):
		return &httpError{http.StatusConflict, APIError{Code: CodeNoStealableTokens, Message: "Target has no review tokens to take"}}
	case errors.Is(err, model.ErrDuplicateChallenge):
		return &httpError{http.StatusConflict, APIError{Code: CodeDuplicateChallenge, Message: "A pending challenge against this target already exists"}}
	case errors.Is(err, model.ErrChallengeNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeChallengeNotFound, Message: "Challenge not found"}}
	case errors.Is(err, model.ErrAlreadyResolved):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyResolved, Message: "Challenge is no longer pending"}}
	case errors.Is(err, model.ErrNoReviewTokens):
		return &httpError{http.StatusConflict, APIError{Code: CodeNoReviewTokens, Message: "No review tokens remaining"}}
	case errors.Is(err, model.ErrGradingFailure):
		return &httpError{http.StatusBadGateway, APIError{Code: CodeGradingFailure, Message: "Grading pipeline failed; no tokens were consumed"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
