package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/alerts"
	"github.com/dennisdiepolder/fleetpulse/internal/api"
	"github.com/dennisdiepolder/fleetpulse/internal/cache"
	"github.com/dennisdiepolder/fleetpulse/internal/config"
	"github.com/dennisdiepolder/fleetpulse/internal/event"
	"github.com/dennisdiepolder/fleetpulse/internal/metrics"
	"github.com/dennisdiepolder/fleetpulse/internal/shiftclock"
	"github.com/dennisdiepolder/fleetpulse/internal/simulator"
	"github.com/dennisdiepolder/fleetpulse/internal/storage"
	"github.com/dennisdiepolder/fleetpulse/internal/ticker"
	"github.com/dennisdiepolder/fleetpulse/internal/websocket"
	"github.com/dennisdiepolder/fleetpulse/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Str("timezone", cfg.Location.String()).
		Str("ledger_mode", cfg.LedgerMode).
		Msg("starting fleetpulse server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := shiftclock.NewRealClock(cfg.Location)

	// Seed the roster from the simulator
	generator := simulator.NewGenerator(cfg.SimSeed)
	roster := cache.NewRosterStore()
	if cfg.SimDrivers > 0 {
		drivers, shifts := generator.GenerateRoster(cfg.SimDrivers)
		roster.Replace(drivers, shifts)
		log.Info().Int("drivers", len(drivers)).Int64("seed", cfg.SimSeed).Msg("roster seeded from simulator")
	}

	// Revenue ledger
	store, err := storage.NewStore(ctx, storage.Options{
		Mode:        storage.ParseLedgerMode(cfg.LedgerMode),
		DatabaseURL: cfg.DatabaseURL,
		Generator:   generator,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create revenue ledger")
	}

	// Week report cache
	var weeks cache.WeekCache = cache.NewNoopWeekCache()
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, week reports will not be cached")
		} else {
			defer client.Close()
			weeks = cache.NewRedisWeekCache(client, cfg.WeekCacheTTL, log.Logger)
			log.Info().Dur("ttl", cfg.WeekCacheTTL).Msg("week report cache enabled")
		}
	}

	// Create WebSocket hub
	hub := websocket.NewHub(log.Logger)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	// Start shift ticker
	shiftTicker := ticker.NewShiftTicker(roster, clock, hub, cfg.TickInterval, alerts.Thresholds{
		Warning:  cfg.LongShiftWarning,
		Critical: cfg.LongShiftCritical,
	}, log.Logger)
	tickerDone := make(chan struct{})
	go func() {
		shiftTicker.Start(ctx)
		close(tickerDone)
	}()

	r := newRouter(cfg, routes{
		ws:      websocket.NewHandler(hub, cfg, log.Logger),
		shifts:  api.NewShiftHandler(shiftTicker, log.Logger),
		roster:  api.NewRosterHandler(roster, log.Logger),
		revenue: api.NewRevenueHandler(roster, store, weeks, clock, log.Logger),
		events:  event.NewReceiver(roster, clock, log.Logger),
	}, log.Logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the ticker and disconnect dashboards before tearing down the server
	cancel()
	<-tickerDone
	<-hubDone

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// routes bundles the handlers mounted by newRouter
type routes struct {
	ws      http.Handler
	shifts  *api.ShiftHandler
	roster  *api.RosterHandler
	revenue *api.RevenueHandler
	events  *event.Receiver
}

// newRouter mounts the dashboard API, driver events and the live socket
// behind the shared middleware chain.
func newRouter(cfg *config.Config, h routes, logger zerolog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(metrics.Get().RecordHTTPRequest))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/shifts/elapsed", h.shifts.GetElapsed)

		r.Get("/roster", h.roster.GetRoster)
		r.Put("/roster", h.roster.ReplaceRoster)

		r.Get("/revenue/week", h.revenue.GetWeek)
		r.Get("/revenue/week/{start}/{direction}", h.revenue.NavigateWeek)
		r.Post("/revenue", h.revenue.RecordRevenue)
	})

	// Internal routes for driver apps
	r.Route("/internal", func(r chi.Router) {
		r.Post("/event", h.events.HandleEvent)
		r.Get("/event/stats", h.events.GetStats)
	})

	r.Get("/ws", h.ws.ServeHTTP)

	return r
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"fleetpulse"}`)
}
