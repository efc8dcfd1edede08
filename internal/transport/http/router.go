package httptransport

import (
	"net/http"

	"workflow-event-router/internal/config"
	"workflow-event-router/internal/dispatch"
	"workflow-event-router/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(st *store.Store, cfg config.ServerConfig, d *dispatch.Dispatcher) *chi.Mux {
	webhook := NewWebhookHandler(st, d, cfg.WebhookSecret)
	public := NewPublicHandlers(st)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	// Webhook senders and browser clients both hit this surface; pre-flight
	// OPTIONS comes back 200 empty from the cors middleware.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Authorization", "X-Client-Info", "Apikey", "Content-Type",
			"X-Api-Key", "X-Webhook-Signature", "X-Source-Platform", "X-Idempotency-Key",
		},
	}))

	r.With(APILogMiddleware()).Get("/healthz", healthHandler(st))

	r.Route("/webhooks", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Post("/events", webhook.Receive())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/audit", public.AuditEntries())
		r.Get("/contributions", public.Contributions())
	})

	return r
}

func healthHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "db_unreachable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
