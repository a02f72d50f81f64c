// Package app wires the advisor service and manages its lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyellow/agri-advisor-go/internal/advisor"
	"github.com/garyellow/agri-advisor-go/internal/buildinfo"
	"github.com/garyellow/agri-advisor-go/internal/config"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/logger"
	"github.com/garyellow/agri-advisor-go/internal/metrics"
	"github.com/garyellow/agri-advisor-go/internal/ratelimit"
	"github.com/garyellow/agri-advisor-go/internal/sentry"
	"github.com/garyellow/agri-advisor-go/internal/storage"
	"github.com/garyellow/agri-advisor-go/internal/warmup"
	"github.com/garyellow/agri-advisor-go/internal/webhook"
)

const sentryFlushTimeout = 2 * time.Second

// Application owns every long-lived component of the server.
type Application struct {
	cfg            *config.Config
	logger         *logger.Logger
	registry       *prometheus.Registry
	metrics        *metrics.Metrics
	pipeline       *Pipeline
	db             *storage.DB // nil without AGRI_KNOWLEDGE_DB
	classifier     *intent.Classifier
	advisor        *advisor.Service
	clientLimiter  *ratelimit.KeyedLimiter
	userLimiter    *ratelimit.KeyedLimiter // nil without LINE
	webhookHandler *webhook.Handler        // nil without LINE
	readiness      *warmup.ReadinessState
	router         *gin.Engine
	server         *http.Server
	wg             sync.WaitGroup
}

// Initialize creates the application. The classifier is not loaded until Run.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	log = log.WithField("service", "agri-advisor-go").WithField("version", buildinfo.Release())
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Release(),
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed; error tracking disabled")
	} else if sentry.IsEnabled() {
		log.WithField("host", cfg.SentryHost).Info("Sentry error tracking enabled")
	}

	gin.SetMode(gin.ReleaseMode)
	return initialize(ctx, cfg, log)
}

func initialize(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Application, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	a := &Application{
		cfg:       cfg,
		logger:    log,
		registry:  registry,
		metrics:   m,
		readiness: warmup.NewReadinessState(cfg.Classifier.InitTimeout),
	}

	pipeline, err := NewPipeline(ctx, cfg, m, log)
	if err != nil {
		return nil, err
	}
	a.pipeline = pipeline
	a.db = pipeline.DB
	a.classifier = pipeline.Classifier
	a.advisor = pipeline.Advisor

	a.clientLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "client",
		Burst:         cfg.RateLimitBurst,
		RefillRate:    cfg.RateLimitRefill,
		CleanupPeriod: config.RateLimiterCleanup,
		Metrics:       m,
	})

	if cfg.LineEnabled() {
		a.userLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
			Name:          "line_user",
			Burst:         cfg.RateLimitBurst,
			RefillRate:    cfg.RateLimitRefill,
			CleanupPeriod: config.RateLimiterCleanup,
			Metrics:       m,
		})
		a.webhookHandler, err = webhook.NewHandler(webhook.HandlerConfig{
			ChannelSecret:  cfg.LineChannelSecret,
			ChannelToken:   cfg.LineChannelToken,
			Advisor:        a.advisor,
			UserLimiter:    a.userLimiter,
			Greeting:       pipeline.Table.Greeting(),
			MaxQueryLength: cfg.MaxQueryLength,
			Timeout:        config.WebhookProcessing,
			Metrics:        m,
			Logger:         log,
		})
		if err != nil {
			a.stopLimiters()
			_ = pipeline.Close()
			return nil, fmt.Errorf("webhook: %w", err)
		}
		log.Info("LINE front-end enabled")
	}

	a.router = a.routes()
	a.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.router,
		ReadHeaderTimeout: config.HTTPRead,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.WithField("strategy", a.classifier.StrategyName()).Info("Initialization complete")
	return a, nil
}

func (a *Application) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger, a.metrics))

	router.GET("/health", a.handleHealth)
	router.GET("/livez", a.handleLiveness)
	router.HEAD("/livez", a.handleLiveness)
	router.GET("/readyz", a.handleReadiness)
	router.HEAD("/readyz", a.handleReadiness)
	router.POST("/query",
		readinessMiddleware(a.readiness),
		rateLimitMiddleware(a.clientLimiter),
		a.handleQuery)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	if a.webhookHandler != nil {
		router.POST("/callback", readinessMiddleware(a.readiness), a.webhookHandler.Handle)
	}
	return router
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.start(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case sig := <-quit:
		a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-errCh:
		a.logger.WithError(err).Error("HTTP server error")
		runErr = fmt.Errorf("http server: %w", err)
	}

	cancel()
	a.wg.Wait()
	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// start begins loading the classifier and flips readiness when it settles.
func (a *Application) start(ctx context.Context) {
	a.classifier.Start(ctx)
	a.wg.Go(func() {
		warmup.Watch(ctx, a.classifier, a.readiness, a.logger)
	})
}

// shutdown stops intake first, then drains webhook events, then releases
// resources the drained work may still touch.
func (a *Application) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	if a.webhookHandler != nil {
		a.logger.Info("Waiting for webhook events to complete...")
		if err := a.webhookHandler.Shutdown(ctx); err != nil {
			a.logger.WithError(err).Warn("Webhook handler shutdown timeout")
		}
	}

	a.logger.Info("Closing resources...")
	if err := a.pipeline.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "pipeline").Error("Component close error")
	}
	a.stopLimiters()

	sentry.Flush(sentryFlushTimeout)
	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(ctx); err != nil {
		return fmt.Errorf("logger shutdown: %w", err)
	}
	return nil
}

func (a *Application) stopLimiters() {
	a.clientLimiter.Stop()
	if a.userLimiter != nil {
		a.userLimiter.Stop()
	}
}
