package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/lifeline-api/internal/api/middleware"
	"github.com/phrazzld/lifeline-api/internal/api/shared"
	"github.com/phrazzld/lifeline-api/internal/events"
	"github.com/phrazzld/lifeline-api/internal/redact"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps are the collaborators of NewRouter. Metrics, MetricsHandler
// and DB are optional.
type RouterDeps struct {
	Matching       MatchingService
	Forecast       ForecastService
	Emitter        events.EventEmitter
	Tasks          TaskStatusReader
	Metrics        apiMiddleware.HTTPObserver
	MetricsHandler http.Handler
	DB             Pinger
	Logger         *slog.Logger
}

const healthCheckTimeout = 2 * time.Second

// NewRouter builds the HTTP routes:
//
//	GET  /health
//	GET  /metrics
//	POST /api/supply/nearest
//	POST /api/donors/match
//	POST /api/blood/search
//	GET  /api/inventory/{id}/expiry
//	POST /api/forecast/demand
//	POST /api/forecast/train
//	GET  /api/tasks/{id}
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(log))
	if deps.Metrics != nil {
		r.Use(apiMiddleware.NewMetricsMiddleware(deps.Metrics))
	}

	matchingHandler := NewMatchingHandler(deps.Matching, log)
	forecastHandler := NewForecastHandler(deps.Forecast, deps.Emitter, deps.Tasks, log)

	r.Route("/api", func(r chi.Router) {
		r.Post("/supply/nearest", matchingHandler.NearestSupply)
		r.Post("/donors/match", matchingHandler.MatchDonors)
		r.Post("/blood/search", matchingHandler.SearchBlood)
		r.Get("/inventory/{id}/expiry", matchingHandler.ClassifyExpiry)

		r.Post("/forecast/demand", forecastHandler.PredictDemand)
		r.Post("/forecast/train", forecastHandler.Retrain)
		r.Get("/tasks/{id}", forecastHandler.TaskStatus)
	})

	r.Get("/health", healthHandler(deps.DB, log))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

func healthHandler(db Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			shared.RespondWithJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Warn("health check failed", slog.String("error", redact.Error(err)))
			shared.RespondWithJSON(w, r, http.StatusServiceUnavailable,
				healthResponse{Status: "degraded", Database: "unreachable"})
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
	}
}
