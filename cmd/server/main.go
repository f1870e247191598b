package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/checkout/internal/application"
	"github.com/eugenenazirov/checkout/internal/config"
	"github.com/eugenenazirov/checkout/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("checkout-server", "Checkout pricing service - totals shopping baskets against a catalog of prices and deals")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()
	catalogFile := kingpinApp.Flag("catalog", "Path to a CSV or YAML catalog file").ExistingFile()
	dealCapFlag := kingpinApp.Flag("deal-application-cap", "Maximum applications of a single deal per basket").Default("0").Int()
	var metricsSet bool
	metricsFlag := kingpinApp.Flag("metrics", "Expose Prometheus metrics on /metrics").IsSetByUser(&metricsSet).Bool()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	optimalRPSFlag := kingpinApp.Flag("optimal-rate-limit-rps", "Optimal-strategy checkouts per second allowed (set 0 to disable)").Default("-1").Float64()
	optimalBurstFlag := kingpinApp.Flag("optimal-rate-limit-burst", "Burst capacity for optimal-strategy checkouts (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	if *catalogFile != "" {
		overrides.CatalogFile = catalogFile
	}

	if *dealCapFlag > 0 {
		overrides.DealApplicationCap = dealCapFlag
	}

	if metricsSet {
		overrides.MetricsEnabled = metricsFlag
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	if *optimalRPSFlag >= 0 {
		overrides.OptimalRPS = optimalRPSFlag
	}

	if *optimalBurstFlag >= 0 {
		overrides.OptimalBurst = optimalBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
