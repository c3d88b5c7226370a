package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Cycle     core.PollCycle
	Triggers  *service.TriggerService // Optional: trigger admin routes
	Campaigns core.CampaignReader     // Optional: campaign read route
	// Readiness checks by dependency name (e.g. "postgres", "redis").
	Readiness map[string]HealthCheck

	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewRouter creates and configures a new HTTP router wrapped in the standard middleware.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	if services.Cycle != nil {
		registerInvocationRoutes(mux, &InvocationHandlers{Cycle: services.Cycle})
	}
	if services.Triggers != nil {
		registerTriggerRoutes(mux, &TriggerHandlers{Svc: services.Triggers})
	}
	if services.Campaigns != nil {
		mux.HandleFunc("GET /api/campaigns/{id}", (&CampaignHandlers{Reader: services.Campaigns}).Get)
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readinessHandler(services.Readiness))

	return Chain(mux,
		Recover(logger),
		RequestID(),
		Logging(logger),
		MaxBody(services.MaxBodyBytes),
	)
}

func registerInvocationRoutes(mux *http.ServeMux, h *InvocationHandlers) {
	mux.HandleFunc("POST /api/invocations", h.Invoke)
}

func registerTriggerRoutes(mux *http.ServeMux, h *TriggerHandlers) {
	mux.HandleFunc("GET /api/triggers", h.List)
	mux.HandleFunc("GET /api/triggers/{name}", h.Get)
	mux.HandleFunc("PUT /api/triggers/{name}", h.Put)
	mux.HandleFunc("DELETE /api/triggers/{name}", h.Delete)
}
