package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/eligibility-checker/internal/client"
	"github.com/jwalitptl/eligibility-checker/internal/config"
	redisrepo "github.com/jwalitptl/eligibility-checker/internal/repository/redis"
	"github.com/jwalitptl/eligibility-checker/internal/resolver"
	"github.com/jwalitptl/eligibility-checker/internal/service/eligibility"
	"github.com/jwalitptl/eligibility-checker/internal/worker"
	"github.com/jwalitptl/eligibility-checker/pkg/circuitbreaker"
	"github.com/jwalitptl/eligibility-checker/pkg/logger"
	"github.com/jwalitptl/eligibility-checker/pkg/metrics"
)

func main() {
	once := flag.Bool("once", false, "run a single batch and exit instead of looping")
	flag.Parse()

	os.Exit(run(*once))
}

func run(once bool) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	if err := cfg.Validate(); err != nil {
		log.Error(err, "invalid configuration")
		return 1
	}
	if cfg.IsLocalBaseURL() {
		log.Warn("api.base_url points at localhost; this will not resolve from a remote host")
	}

	redisClient, err := redisrepo.NewClient(cfg.Redis)
	if err != nil {
		log.Error(err, "failed to connect to Redis")
		return 1
	}
	defer redisClient.Close()
	log.Info("connected to Redis")

	tracker := redisrepo.NewTracker(redisClient, redisrepo.TrackerConfig{
		KeyPrefix:   cfg.Checker.TrackingPrefix,
		TrackingTTL: cfg.Checker.TrackingTTL,
		ErrorTTL:    cfg.Checker.ErrorTTL,
	}, log)
	tpaConfigs := redisrepo.NewTPAConfigRepository(redisClient, log)

	payerResolver := resolver.NewPayerResolver(cfg.Clinic.ID, tpaConfigs, log)
	visitTypeResolver := resolver.NewVisitTypeResolver(log)

	clientOpts := client.Options{
		BaseURL: cfg.API.BaseURL,
		APIKey:  cfg.API.Key,
		Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
	}

	scheduling := client.NewSchedulingClient(clientOpts, cfg.Clinic.CustomerSiteID, log)

	limiter := rate.NewLimiter(rate.Limit(cfg.Checker.SubmitRate), cfg.Checker.SubmitBurst)
	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "eligibility-api",
		MaxFailures: 5,
		Timeout:     30 * time.Second,
	})
	submitter := client.NewEligibilityClient(clientOpts, limiter, breaker, log)
	history := client.NewHistoryClient(clientOpts, cfg.Clinic.ID, log)

	m := metrics.NewMetrics("eligibility_checker")

	pipeline := eligibility.NewService(tracker, payerResolver, visitTypeResolver, submitter, history, m, log)
	runner := worker.NewRunner(scheduling, pipeline, cfg.Checker.Interval, m, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal, shutting down after current iteration", "signal", sig.String())
		cancel()
	}()

	if once {
		if _, err := runner.RunOnce(ctx); err != nil {
			log.Error(err, "batch failed")
			return 1
		}
		log.Info("eligibility checker completed")
		return 0
	}

	setupHealthCheck(cfg.Checker.HealthPort, log)
	runner.Start(ctx)
	log.Info("eligibility checker stopped")
	return 0
}

func newOpsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func setupHealthCheck(port int, log *logger.Logger) {
	go func() {
		// The ops endpoints are best-effort; losing them must not take the
		// worker down with them.
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), newOpsMux()); err != nil {
			log.Error(err, "health check server failed")
		}
	}()
}
