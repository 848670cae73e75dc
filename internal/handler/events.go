package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushub/clubevents/internal/auth"
	"github.com/campushub/clubevents/internal/model"
	"github.com/campushub/clubevents/internal/repository"
)

// listEvents handles GET /api/events
// Public; supports ?isApproved=, ?isActive=, ?club= and ?category=
// exact-match filters combined with AND.
func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	var f repository.EventFilter
	var err error
	if f.IsApproved, err = boolParam(r, "isApproved"); err != nil {
		respondError(w, http.StatusBadRequest, "isApproved must be true or false")
		return
	}
	if f.IsActive, err = boolParam(r, "isActive"); err != nil {
		respondError(w, http.StatusBadRequest, "isActive must be true or false")
		return
	}
	f.ClubID = r.URL.Query().Get("club")
	f.Category = r.URL.Query().Get("category")

	events, err := a.events.List(r.Context(), f)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondList(w, events)
}

// getEvent handles GET /api/events/{id}
func (a *API) getEvent(w http.ResponseWriter, r *http.Request) {
	event, err := a.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, event)
}

// createEvent handles POST /api/events
func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := a.events.Create(r.Context(), caller, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, event)
}

// updateEvent handles PUT /api/events/{id}
func (a *API) updateEvent(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	var req model.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := a.events.Update(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, event)
}

// deleteEvent handles DELETE /api/events/{id}
func (a *API) deleteEvent(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	if err := a.events.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, "event deleted successfully")
}

// approveEvent handles PUT /api/events/{id}/approve
func (a *API) approveEvent(w http.ResponseWriter, r *http.Request) {
	a.setEventApproval(w, r, true)
}

// rejectEvent handles PUT /api/events/{id}/reject
func (a *API) rejectEvent(w http.ResponseWriter, r *http.Request) {
	a.setEventApproval(w, r, false)
}

func (a *API) setEventApproval(w http.ResponseWriter, r *http.Request, approved bool) {
	caller, _ := auth.IdentityFrom(r.Context())

	event, err := a.events.SetApproval(r.Context(), caller, chi.URLParam(r, "id"), approved)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, event)
}
