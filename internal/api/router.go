package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jverho/kontor/internal/api/handlers"
	mw "github.com/jverho/kontor/internal/api/middleware"
	"github.com/jverho/kontor/internal/config"
	"github.com/jverho/kontor/internal/dbrouter"
	"github.com/jverho/kontor/internal/domain"
	"github.com/jverho/kontor/internal/metrics"
	"github.com/jverho/kontor/internal/registry"
	"github.com/jverho/kontor/internal/store"
)

// App holds the router plus process-level counters for the stats endpoint.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, conns *dbrouter.Router, m *metrics.Metrics, logger *zap.Logger) *App {
	// Stores against the core catalog database
	tenantStore := store.NewTenantStore(db)
	moduleStore := store.NewModuleStore(db)

	// Module registry
	mirror := registry.NewMirror()
	manifests := registry.NewManifestLoader(config.ModulesDir())
	menu := registry.NewMenuStore(filepath.Join(config.DataDir(), "menu.json"))
	prov := registry.NewProvisioner(config.DataDir(), logger)
	modules := registry.NewService(moduleStore, tenantStore, mirror, manifests, menu, prov, logger, m)

	// Handlers
	tenantHandler := handlers.NewTenantHandler(tenantStore, conns)
	moduleHandler := handlers.NewModuleHandler(modules)
	scopeHandler := handlers.NewScopeHandler()

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and observability (no tenant scope)
	r.Get("/health", healthHandler(db))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/debug/stats", app.statsHandler())

	// Administrative surface (no tenant scope)
	r.Route("/admin", func(r chi.Router) {
		r.Get("/tenants", tenantHandler.List)
		r.Post("/tenants", tenantHandler.Create)
		r.Post("/tenants/{id}/status", tenantHandler.UpdateStatus)
		r.Delete("/connections/{slug}", tenantHandler.InvalidateConnection)

		r.Get("/modules", moduleHandler.List)
		r.Post("/modules/{slug}/install", moduleHandler.Install)
		r.Post("/modules/{slug}/activate", moduleHandler.Activate)
		r.Post("/modules/{slug}/deactivate", moduleHandler.Deactivate)
		r.Post("/modules/{slug}/reconcile", moduleHandler.Reconcile)
		r.Delete("/modules/{slug}", moduleHandler.Uninstall)
	})

	// Tenant-scoped routes; business modules mount under the same chain.
	r.Group(func(r chi.Router) {
		r.Use(mw.ResolveTenant(tenantStore, conns, config.BaseDomain(), logger, m))

		r.Get("/resolve", scopeHandler.Resolve)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireCompany(logger))
			r.Get("/whoami", scopeHandler.Whoami)
			r.Get("/tenant/{slug}/whoami", scopeHandler.Whoami)
		})
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy the domain interfaces at compile time.
var (
	_ domain.TenantDirectory = (*store.TenantStore)(nil)
	_ domain.ModuleStore     = (*store.ModuleStore)(nil)
	_ domain.CompanyLookup   = (*store.CompanyStore)(nil)
)
