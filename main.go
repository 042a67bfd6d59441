package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/scorekeeper/internal/club"
	"github.com/mauv0809/scorekeeper/internal/config"
	"github.com/mauv0809/scorekeeper/internal/database"
	server "github.com/mauv0809/scorekeeper/internal/http"
	"github.com/mauv0809/scorekeeper/internal/metrics"
	"github.com/mauv0809/scorekeeper/internal/notifier"
	"github.com/mauv0809/scorekeeper/internal/notifier/slack"
	"github.com/mauv0809/scorekeeper/internal/pubsub"
	"github.com/mauv0809/scorekeeper/internal/registrar"
)

func main() {
	exitCode := 0
	// Registered first so it runs after every other deferred teardown.
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	cfg.Log.Apply()

	db, dbTeardown, err := database.InitDB(cfg.Database())
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	clubStore := club.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	var resultNotifier notifier.Notifier = notifier.Nop{}
	if cfg.SlackEnabled() {
		resultNotifier = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	} else {
		log.Info("Slack is not configured, match results will not be posted")
	}

	var events pubsub.PubSubClient
	if cfg.ProjectID != "" {
		events = pubsub.New(cfg.ProjectID)
	} else {
		log.Info("GCP_PROJECT is not set, domain events will not be published")
		events = pubsub.NewDisabled()
	}
	defer events.Close()

	matchRegistrar := registrar.New(clubStore, resultNotifier, metricsSvc, events,
		registrar.WithMaxRetries(cfg.Registrar.MaxRetries))

	s := server.NewServer(
		clubStore,
		matchRegistrar,
		metricsSvc,
		metricsHandler,
		events,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port, "dialect", db.Dialect)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	if err := waitForShutdown(srv, serverErrors, shutdown); err != nil {
		log.Error("Server error", "error", err)
		exitCode = 1
	}

	log.Info("Server process shutting down")
}

// waitForShutdown blocks until the server fails or a signal arrives. On a
// signal it drains in-flight requests for up to 30 seconds. A server error is
// returned to the caller.
func waitForShutdown(srv *http.Server, serverErrors <-chan error, shutdown <-chan os.Signal) error {
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}
	return nil
}
