// Package respond writes JSON responses and maps domain errors onto HTTP
// status codes.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chris/habit-pools/pkg/lifelines"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/pools"
	"github.com/chris/habit-pools/pkg/profiles"
	"github.com/chris/habit-pools/pkg/proofs"
	"github.com/chris/habit-pools/pkg/storage"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// Decode reads a JSON request body into v. It writes a 400 and returns false
// on malformed input.
func Decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// Status returns the HTTP status for a domain error.
func Status(err error) int {
	var verr *pools.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, profiles.ErrInvalidDeposit),
		errors.Is(err, proofs.ErrEmptyImage),
		errors.Is(err, lifelines.ErrSelfVouch):
		return http.StatusBadRequest
	case errors.Is(err, pools.ErrNotCreator), errors.Is(err, proofs.ErrNotReviewer):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, storage.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pools.ErrEscrow):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Error writes err as a plain-text response with its mapped status.
// Internal failures are logged and their details withheld.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}
