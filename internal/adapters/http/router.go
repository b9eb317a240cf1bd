package httpadapter

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/grievease/petition-triage/internal/config"
	"github.com/grievease/petition-triage/internal/core/ports"
	"github.com/grievease/petition-triage/internal/observability/metrics"
)

const (
	serviceName          = "api"
	backpressureWait     = 250 * time.Millisecond
	multipartMemoryLimit = 1 << 20
)

// Services bundles the inbound ports the router serves. Extractor may be nil, which
// disables the letter upload route.
type Services struct {
	Submitter    ports.PetitionSubmitter
	Reclassifier ports.PetitionReclassifier
	Reader       ports.PetitionReader
	Advisor      ports.ClassificationAdvisor
	Catalog      ports.CatalogService
	CatalogAdmin ports.CatalogAdmin
	Analytics    ports.AnalyticsService
	Extractor    ports.TextExtractor
}

type Router struct {
	svc       Services
	cfg       config.Config
	metrics   *metrics.HTTPServerMetrics
	logger    *slog.Logger
	validator *requestValidator
}

type RouterOption func(*Router)

func WithLogger(logger *slog.Logger) RouterOption {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

func WithMetrics(m *metrics.HTTPServerMetrics) RouterOption {
	return func(rt *Router) {
		rt.metrics = m
	}
}

func NewRouter(cfg config.Config, svc Services, opts ...RouterOption) (*Router, error) {
	validator, err := newRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("init request validator: %w", err)
	}
	rt := &Router{svc: svc, cfg: cfg, logger: slog.Default(), validator: validator}
	for _, opt := range opts {
		opt(rt)
	}
	return rt, nil
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("POST /v1/petitions", rt.submitPetition)
	mux.HandleFunc("GET /v1/petitions/{id}", rt.getPetition)
	mux.HandleFunc("POST /v1/petitions/{id}/classify", rt.classifyPetition)
	mux.HandleFunc("POST /v1/petitions/{id}/reclassify", rt.reclassifyPetition)
	mux.HandleFunc("GET /v1/petitions/{id}/reclassifications", rt.listReclassifications)

	mux.HandleFunc("POST /v1/classification/preview", rt.previewClassification)
	mux.HandleFunc("POST /v1/classification/suggestions", rt.suggestClassification)
	if rt.svc.Extractor != nil {
		mux.HandleFunc("POST /v1/classification/letter", rt.classifyLetter)
	}

	mux.HandleFunc("GET /v1/departments", rt.listDepartments)
	mux.HandleFunc("GET /v1/categories", rt.listCategories)
	mux.HandleFunc("GET /v1/admin/catalog", rt.exportCatalog)
	mux.HandleFunc("POST /v1/admin/catalog/reload", rt.reloadCatalog)

	mux.HandleFunc("GET /v1/analytics/urgency", rt.urgencyDistribution)
	mux.HandleFunc("GET /v1/analytics/departments", rt.departmentStats)
	mux.HandleFunc("GET /v1/analytics/export", rt.exportAnalytics)

	var handler http.Handler = rt.validator.middleware(mux)
	handler = backpressureMiddleware(handler, rt.cfg.HTTPMaxInFlight, backpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.HTTPRateLimitRPS, rt.cfg.HTTPRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler, rt.logger)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	status := rt.svc.Catalog.Status()
	if status.Source == "" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "catalog_not_loaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "catalog": status})
}
