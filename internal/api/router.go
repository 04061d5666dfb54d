package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultBodyLimit = 1 << 20

// Deps groups what the router needs. Metrics, Gatherer, Ready and RateLimit are optional.
type Deps struct {
	Availability AvailabilityService
	Templates    TemplateService
	Applier      TemplateApplier
	Metrics      RequestObserver
	Gatherer     prometheus.Gatherer
	Ready        ReadyCheck
	Logger       *zap.Logger
	BodyLimit    int64
	RateLimit    RateLimit
}

// NewRouter builds the HTTP API.
func NewRouter(d Deps) *mux.Router {
	if d.BodyLimit <= 0 {
		d.BodyLimit = defaultBodyLimit
	}
	h := &handler{
		availability: d.Availability,
		templates:    d.Templates,
		applier:      d.Applier,
		logger:       d.Logger,
	}

	r := mux.NewRouter()
	r.Use(withRequestID, withAccessLog(d.Logger, d.Metrics), withBodyLimit(d.BodyLimit))

	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", readyz(d.Ready)).Methods(http.MethodGet)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	av := r.PathPrefix("/availabilities").Subrouter()
	tp := r.PathPrefix("/availability-templates").Subrouter()
	if d.RateLimit.PerSecond > 0 {
		limit := withRateLimit(d.RateLimit, d.Logger)
		av.Use(limit)
		tp.Use(limit)
	}

	av.HandleFunc("/all", h.listAvailabilities).Methods(http.MethodGet)
	av.HandleFunc("/add", h.createAvailability).Methods(http.MethodPost)
	av.HandleFunc("/update/{id}", h.updateAvailability).Methods(http.MethodPut)
	av.HandleFunc("/delete/{id}", h.deleteAvailability).Methods(http.MethodDelete)

	tp.HandleFunc("/all", h.listTemplates).Methods(http.MethodGet)
	tp.HandleFunc("/add", h.createTemplate).Methods(http.MethodPost)
	tp.HandleFunc("/update/{id}", h.updateTemplate).Methods(http.MethodPut)
	tp.HandleFunc("/delete/{id}", h.deleteTemplate).Methods(http.MethodDelete)
	tp.HandleFunc("/apply/{id}", h.applyTemplate).Methods(http.MethodPost)

	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, envelope{"status": "ok"})
}

func readyz(check ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, envelope{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		respondJSON(w, http.StatusOK, envelope{"status": "ready"})
	}
}
