package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushub/clubevents/internal/auth"
	"github.com/campushub/clubevents/internal/model"
	"github.com/campushub/clubevents/internal/repository"
)

// listClubs handles GET /api/clubs
// Public; supports ?isApproved= and ?isActive= exact-match filters.
func (a *API) listClubs(w http.ResponseWriter, r *http.Request) {
	var f repository.ClubFilter
	var err error
	if f.IsApproved, err = boolParam(r, "isApproved"); err != nil {
		respondError(w, http.StatusBadRequest, "isApproved must be true or false")
		return
	}
	if f.IsActive, err = boolParam(r, "isActive"); err != nil {
		respondError(w, http.StatusBadRequest, "isActive must be true or false")
		return
	}

	clubs, err := a.clubs.List(r.Context(), f)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondList(w, clubs)
}

// getClub handles GET /api/clubs/{id}
func (a *API) getClub(w http.ResponseWriter, r *http.Request) {
	club, err := a.clubs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, club)
}

// createClub handles POST /api/clubs
func (a *API) createClub(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	var req model.CreateClubRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	club, err := a.clubs.Create(r.Context(), caller, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, club)
}

// updateClub handles PUT /api/clubs/{id}
func (a *API) updateClub(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	var req model.UpdateClubRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	club, err := a.clubs.Update(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, club)
}

// deleteClub handles DELETE /api/clubs/{id}
func (a *API) deleteClub(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	if err := a.clubs.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, "club deleted successfully")
}

// approveClub handles PUT /api/clubs/{id}/approve
func (a *API) approveClub(w http.ResponseWriter, r *http.Request) {
	a.setClubApproval(w, r, true)
}

// rejectClub handles PUT /api/clubs/{id}/reject
func (a *API) rejectClub(w http.ResponseWriter, r *http.Request) {
	a.setClubApproval(w, r, false)
}

func (a *API) setClubApproval(w http.ResponseWriter, r *http.Request, approved bool) {
	caller, _ := auth.IdentityFrom(r.Context())

	club, err := a.clubs.SetApproval(r.Context(), caller, chi.URLParam(r, "id"), approved)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, club)
}

// listCoordinators handles GET /api/users/coordinators
func (a *API) listCoordinators(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	users, err := a.clubs.Coordinators(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondList(w, users)
}
