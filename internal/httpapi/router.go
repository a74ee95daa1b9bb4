// Package httpapi serves the premise API over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/metrics"
	"premise_fetcher/internal/query"
	"premise_fetcher/internal/service"
)

type Ingester interface {
	Ingest(ctx context.Context, sourceID string, expected domain.Platform, opts domain.FetchOptions) (*domain.IngestResult, error)
	Preview(ctx context.Context, platform domain.Platform, rawURL string, opts domain.FetchOptions) (*domain.Analysis, error)
	PreviewItem(ctx context.Context, platform domain.Platform, rawURL string) (*domain.ItemPreview, error)
}

type SourceManager interface {
	Register(ctx context.Context, platform domain.Platform, rawURL, name string) (*domain.Source, error)
	Get(ctx context.Context, id string) (*domain.Source, error)
	List(ctx context.Context) ([]domain.Source, error)
	Delete(ctx context.Context, id string) error
}

type PremiseManager interface {
	List(ctx context.Context, params query.Params) (*service.PremisePage, error)
	Get(ctx context.Context, id string) (*domain.Premise, error)
	MarkUsed(ctx context.Context, id string, used bool) (*domain.Premise, error)
	SetCategory(ctx context.Context, id string, category domain.Category) (*domain.Premise, error)
	Delete(ctx context.Context, id string) error
	FirstPerson(ctx context.Context, id string) (string, error)
}

type NicheManager interface {
	List(ctx context.Context) ([]domain.Niche, error)
	Create(ctx context.Context, name string, subNiches []string) (*domain.Niche, error)
	Update(ctx context.Context, id string, name *string, subNiches []string) (*domain.Niche, error)
	AddSubNiche(ctx context.Context, id, name string) (*domain.Niche, error)
	Delete(ctx context.Context, id string) error
}

// Deps are the collaborators of the router. Metrics, Gatherer and Health are optional.
type Deps struct {
	Ingest   Ingester
	Sources  SourceManager
	Premises PremiseManager
	Niches   NicheManager

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Health reports the readiness of the backing store.
	Health func(ctx context.Context) error
	Logger *slog.Logger
}

type handler struct {
	ingest   Ingester
	sources  SourceManager
	premises PremiseManager
	niches   NicheManager
	health   func(ctx context.Context) error
	logger   *slog.Logger
}

func NewRouter(deps Deps) http.Handler {
	h := &handler{
		ingest:   deps.Ingest,
		sources:  deps.Sources,
		premises: deps.Premises,
		niches:   deps.Niches,
		health:   deps.Health,
		logger:   deps.Logger.With("component", "http"),
	}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger, deps.Metrics))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/sources", func(r chi.Router) {
		r.Get("/", h.listSources)
		r.Post("/{platform}", h.registerSource)
		r.Get("/{id}", h.getSource)
		r.Delete("/{id}", h.deleteSource)
		r.Post("/{id}/extract", h.extractSource)
	})

	r.Route("/premises", func(r chi.Router) {
		r.Get("/", h.listPremises)
		r.Get("/{id}", h.getPremise)
		r.Delete("/{id}", h.deletePremise)
		r.Patch("/{id}/used", h.markUsed)
		r.Patch("/{id}/category", h.setCategory)
		r.Get("/{id}/first-person", h.firstPerson)
	})

	r.Route("/niches", func(r chi.Router) {
		r.Get("/", h.listNiches)
		r.Post("/", h.createNiche)
		r.Put("/{id}", h.updateNiche)
		r.Post("/{id}/subniches", h.addSubNiche)
		r.Delete("/{id}", h.deleteNiche)
	})

	r.Post("/{platform}/analyze", h.analyze)
	r.Post("/{platform}/item", h.analyzeItem)
	r.Post("/{platform}/extract/{sourceId}", h.extractPlatform)

	return r
}

// requestLogger logs every request and records it under its route pattern.
func requestLogger(logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)

			m.ObserveRequest(r.Method, route, status, elapsed)
			logger.Debug("request",
				"method", r.Method,
				"route", route,
				"status", status,
				"duration", elapsed,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			fail(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	respond(w, http.StatusOK, "ok", nil)
}
