// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/campushub/clubevents/internal/policy"
	"github.com/campushub/clubevents/internal/repository"
	"github.com/campushub/clubevents/internal/service"
)

// response is the JSON envelope every endpoint returns.
type response struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Success: true, Data: data})
}

// respondList returns an empty array rather than null for better
// client compatibility, plus the match count.
func respondList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	writeJSON(w, http.StatusOK, response{Success: true, Count: &n, Data: items})
}

func respondMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, response{Success: true, Message: msg})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, response{Success: false, Message: msg})
}

// respondServiceError maps domain errors to HTTP status classes: 404
// for missing targets, 403 for authorization denials, 400 for
// validation and business-rule violations, 500 otherwise.
func respondServiceError(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case policy.IsDenied(err):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrCoordinatorHasClub),
		errors.Is(err, repository.ErrClubNotApproved),
		errors.Is(err, repository.ErrEventNotApproved),
		errors.Is(err, repository.ErrEventInactive),
		errors.Is(err, repository.ErrDeadlinePassed),
		errors.Is(err, repository.ErrAlreadyRegistered),
		errors.Is(err, repository.ErrEventFull):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// boolParam parses an optional ?name=true|false query parameter.
func boolParam(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
