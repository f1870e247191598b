package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eugenenazirov/checkout/internal/api"
	"github.com/eugenenazirov/checkout/internal/checkout"
	"github.com/eugenenazirov/checkout/internal/config"
	"github.com/eugenenazirov/checkout/internal/metrics"
	"github.com/eugenenazirov/checkout/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage  storage.Storage
	metrics  *metrics.CheckoutMetrics
	registry *prometheus.Registry
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	cat, err := cfg.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	store := storage.NewMemoryStorage(
		storage.WithLogger(logger),
		storage.WithEvaluateOptions(checkout.WithApplicationCap(cfg.DealApplicationCap)),
	)
	if err := store.SetCatalog(cat); err != nil {
		return nil, fmt.Errorf("failed to apply catalog: %w", err)
	}

	routerOpts := []api.RouterOption{
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
	handlerOpts := []api.HandlerOption{
		api.WithOptimalRateLimit(cfg.OptimalRateLimitRPS, cfg.OptimalRateLimitBurst),
	}

	var (
		registry    *prometheus.Registry
		checkoutMet *metrics.CheckoutMetrics
	)
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		checkoutMet = metrics.NewCheckoutMetrics(cfg.MetricsNamespace, registry)
		handlerOpts = append(handlerOpts, api.WithMetrics(checkoutMet))
		routerOpts = append(routerOpts, api.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	}

	handler := api.NewHandler(store, handlerOpts...)
	apiRouter := api.NewRouter(handler, logger, routerOpts...)

	return &App{
		storage:  store,
		metrics:  checkoutMet,
		registry: registry,
		handler:  handler,
		router:   apiRouter,
		logger:   logger,
		server:   NewServer(cfg, BuildRootHandler(apiRouter)),
	}, nil
}

// BuildRootHandler constructs the root HTTP handler that routes API and metrics
// requests and describes the service on "/".
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/metrics", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service": "checkout",
			"endpoints": []string{
				"GET /api/health",
				"GET /api/catalog",
				"PUT /api/catalog",
				"POST /api/checkout",
				"GET /metrics",
			},
		})
	}))
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Handler returns the root HTTP handler served by the application.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}
