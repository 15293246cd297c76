package httpadapter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/ports"
	"github.com/kirillkom/document-classifier/internal/observability/metrics"
)

const serviceName = "api"

// HealthReporter tells whether the classifier lost its prototypes.
type HealthReporter interface {
	Degraded() bool
}

// Services groups the inbound ports served over HTTP. Metrics and Health
// are optional.
type Services struct {
	Uploader     ports.DocumentUploader
	Documents    ports.DocumentReader
	Diagnoser    ports.PDFDiagnoser
	Reclassifier ports.Reclassifier
	Classifier   ports.TextClassifier
	Health       HealthReporter
	Metrics      *metrics.HTTPServerMetrics
}

type Router struct {
	svc            Services
	maxUploadBytes int64
	limiter        *clientRateLimiter
	maxInFlight    int
	inFlightWait   time.Duration
	logger         *slog.Logger
}

func NewRouter(cfg config.Config, svc Services) *Router {
	rt := &Router{
		svc:            svc,
		maxUploadBytes: cfg.MaxUploadBytes,
		maxInFlight:    cfg.APIMaxInFlight,
		inFlightWait:   cfg.APIBackpressureWait,
		logger:         slog.Default().With("component", "http"),
	}
	if rt.maxUploadBytes <= 0 {
		rt.maxUploadBytes = 10 << 20
	}
	if cfg.APIRateLimitRPS > 0 {
		rt.limiter = newClientRateLimiter(cfg.APIRateLimitRPS, cfg.APIRateLimitBurst)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)
	r.Use(middleware.Recoverer)
	if rt.svc.Metrics != nil {
		r.Use(func(next http.Handler) http.Handler {
			return rt.svc.Metrics.Middleware(serviceName, next)
		})
	}

	r.Get("/healthz", rt.healthz)
	if rt.svc.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.svc.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if rt.limiter != nil {
			r.Use(rt.limiter.middleware)
		}
		if rt.maxInFlight > 0 {
			r.Use(func(next http.Handler) http.Handler {
				return backpressureMiddleware(next, rt.maxInFlight, rt.inFlightWait)
			})
		}

		r.Route("/v1/files", func(r chi.Router) {
			r.Post("/upload", rt.uploadFile)
			r.Post("/diagnose-pdf", rt.diagnosePDF)
			r.Post("/reclassify-all", rt.reclassifyAll)
			r.Get("/", rt.listFiles)
			r.Get("/{id}", rt.getFile)
			r.Delete("/{id}", rt.deleteFile)
		})
		r.Post("/v1/classify", rt.classifyText)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorBody(w, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorBody(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
	return r
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	status := "ready"
	if rt.svc.Health != nil && rt.svc.Health.Degraded() {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "classifier": status})
}
