package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/openingcoach/openingcoach/internal/api/middleware"
	"github.com/openingcoach/openingcoach/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler    http.HandlerFunc
	SubmitJobHandler http.HandlerFunc
	JobStatusHandler http.HandlerFunc
	ListJobsHandler  http.HandlerFunc
	DeleteJobHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Health check sits outside the rate limit
	r.Get("/health", orNotImplemented(deps.HealthHandler))

	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/jobs", orNotImplemented(deps.SubmitJobHandler))
		r.Get("/jobs", orNotImplemented(deps.ListJobsHandler))
		r.Get("/jobs/{id}", orNotImplemented(deps.JobStatusHandler))
		r.Delete("/jobs/{id}", orNotImplemented(deps.DeleteJobHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
