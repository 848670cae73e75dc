package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/campushub/clubevents/internal/auth"
	"github.com/campushub/clubevents/internal/service"
)

// API holds all HTTP handlers for the engine.
type API struct {
	clubs         *service.ClubService
	events        *service.EventService
	registrations *service.RegistrationService
	tokens        *auth.Tokens
}

// NewAPI constructs an API with its dependencies.
func NewAPI(
	clubs *service.ClubService,
	events *service.EventService,
	registrations *service.RegistrationService,
	tokens *auth.Tokens,
) *API {
	return &API{clubs: clubs, events: events, registrations: registrations, tokens: tokens}
}

// RouterConfig tunes the global middleware stack.
type RouterConfig struct {
	RateRPS   float64
	RateBurst int
}

// Router builds the chi router with the full middleware stack and all
// API routes. Club and event reads are public; every mutation and all
// registration endpoints require a bearer identity.
func (a *API) Router(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger)                  // structured access log
	r.Use(CORS)
	if cfg.RateRPS > 0 {
		r.Use(RateLimit(cfg.RateRPS, cfg.RateBurst))
	}

	r.Get("/health", HealthCheck)

	// Dev stand-in for the external identity provider.
	r.Post("/api/auth/token", a.mintToken)

	r.Route("/api/clubs", func(r chi.Router) {
		r.Get("/", a.listClubs)
		r.Get("/{id}", a.getClub)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(a.tokens))
			r.Post("/", a.createClub)
			r.Put("/{id}", a.updateClub)
			r.Delete("/{id}", a.deleteClub)
			r.Put("/{id}/approve", a.approveClub)
			r.Put("/{id}/reject", a.rejectClub)
		})
	})

	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", a.listEvents)
		r.Get("/{id}", a.getEvent)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(a.tokens))
			r.Post("/", a.createEvent)
			r.Put("/{id}", a.updateEvent)
			r.Delete("/{id}", a.deleteEvent)
			r.Put("/{id}/approve", a.approveEvent)
			r.Put("/{id}/reject", a.rejectEvent)
		})
	})

	r.Route("/api/registrations", func(r chi.Router) {
		r.Use(RequireAuth(a.tokens))
		r.Post("/", a.createRegistration)
		r.Get("/", a.listAllRegistrations)
		r.Get("/my-registrations", a.listMyRegistrations)
		r.Get("/my-events", a.listMyEventRegistrations)
		r.Get("/{id}", a.getRegistration)
		r.Put("/{id}", a.updateRegistration)
		r.Delete("/{id}", a.cancelRegistration)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(RequireAuth(a.tokens))
		r.Get("/coordinators", a.listCoordinators)
	})

	return r
}

// mintToken handles POST /api/auth/token
// Issues a bearer token for local development; in production the
// external identity provider issues credentials instead.
func (a *API) mintToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		req.UserID = uuid.New().String()
	}

	token, err := a.tokens.Sign(auth.Identity{UserID: req.UserID, Role: role})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not sign token")
		return
	}
	respondData(w, http.StatusOK, map[string]string{
		"token":   token,
		"user_id": req.UserID,
		"role":    req.Role,
	})
}
