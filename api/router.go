package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/docsum/observability"
	"github.com/hazyhaar/docsum/shield"
)

// RegisterHTTP mounts the endpoints on r. Unknown verbs on a known path
// get a 405 envelope.
func (h *Handler) RegisterHTTP(r chi.Router) {
	r.MethodNotAllowed(h.methodNotAllowed)
	r.NotFound(notFound)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.MethodNotAllowed(h.methodNotAllowed)
		r.NotFound(notFound)

		r.Post("/parse-pdf", h.ParsePDF)
		r.Post("/summarize", h.Summarize)
	})
}

// NewRouter builds the full HTTP handler: CORS for /api/*, shield
// middleware, request metrics and the docsum routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(cors("/api/", h.opts.CORSOrigin))
	r.Use(middleware.RealIP)
	for _, mw := range shield.DefaultStack(shield.Config{
		MaxBodyBytes:  h.opts.MaxBodyBytes,
		RatePerSecond: h.opts.RatePerSecond,
		Burst:         h.opts.Burst,
	}) {
		r.Use(mw)
	}
	r.Use(observability.HTTPMetrics(h.metrics))

	h.RegisterHTTP(r)
	return r
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeFailure(w, r, ErrMethodNotAllowed)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorEnvelope{Error: msgNotFound})
}
