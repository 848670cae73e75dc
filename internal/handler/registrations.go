package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushub/clubevents/internal/auth"
	"github.com/campushub/clubevents/internal/model"
	"github.com/campushub/clubevents/internal/repository"
)

// createRegistration handles POST /api/registrations
// Registers the calling student for an event, subject to the full
// gating sequence (approval, active, deadline, uniqueness, capacity).
func (a *API) createRegistration(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reg, err := a.registrations.Register(r.Context(), caller, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, reg)
}

// listAllRegistrations handles GET /api/registrations
// Admin only; supports ?event=, ?student= and ?status= filters.
func (a *API) listAllRegistrations(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	f := repository.RegistrationFilter{
		EventID:   r.URL.Query().Get("event"),
		StudentID: r.URL.Query().Get("student"),
		Status:    r.URL.Query().Get("status"),
	}
	regs, err := a.registrations.ListAll(r.Context(), caller, f)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondList(w, regs)
}

// listMyRegistrations handles GET /api/registrations/my-registrations
func (a *API) listMyRegistrations(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	regs, err := a.registrations.ListMine(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondList(w, regs)
}

// listMyEventRegistrations handles GET /api/registrations/my-events
// Returns registrations for all events the calling coordinator created.
func (a *API) listMyEventRegistrations(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	regs, err := a.registrations.ListForMyEvents(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondList(w, regs)
}

// getRegistration handles GET /api/registrations/{id}
func (a *API) getRegistration(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	reg, err := a.registrations.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, reg)
}

// updateRegistration handles PUT /api/registrations/{id}
// Changes a registration's status (coordinator or admin).
func (a *API) updateRegistration(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	var req model.UpdateRegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reg, err := a.registrations.UpdateStatus(r.Context(), caller, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, reg)
}

// cancelRegistration handles DELETE /api/registrations/{id}
// Hard-deletes the caller's registration, freeing its capacity slot.
func (a *API) cancelRegistration(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	if err := a.registrations.Cancel(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, "registration cancelled successfully")
}
