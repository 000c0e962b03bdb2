// Package api exposes the calculators over HTTP next to the job workers,
// plus health, readiness and metrics endpoints.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bulkbuddy-workers/internal/common/config"
	"bulkbuddy-workers/internal/common/logger"
	"bulkbuddy-workers/internal/common/observability"
	calculatecalorietargets "bulkbuddy-workers/internal/workers/calculator/calculate-calorie-targets"
	partitionmealslots "bulkbuddy-workers/internal/workers/calculator/partition-meal-slots"
	aggregatenutrition "bulkbuddy-workers/internal/workers/nutrition/aggregate-nutrition"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

type Options struct {
	Config    config.ServerConfig
	Calories  *calculatecalorietargets.Handler
	MealSlots *partitionmealslots.Handler
	Aggregate *aggregatenutrition.Handler
	// Checks are run by /ready, keyed by component name.
	Checks   map[string]CheckFunc
	Gatherer prometheus.Gatherer
	Obs      *observability.Observability
	Logger   logger.Logger
}

type Server struct {
	opts   Options
	router *mux.Router
	logger logger.Logger
	srv    *http.Server
}

func NewServer(opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		opts:   opts,
		router: mux.NewRouter(),
		logger: opts.Logger.WithFields(map[string]interface{}{"component": "http"}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.tracingMiddleware, s.loggingMiddleware)

	s.router.HandleFunc("/api/calculator/calories", s.handleCalories).Methods(http.MethodPost)
	s.router.HandleFunc("/api/calculator/meal-slots", s.handleMealSlots).Methods(http.MethodPost)
	s.router.HandleFunc("/api/nutrition/aggregate", s.handleAggregate).Methods(http.MethodPost)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

// Handler returns the router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	origins := s.opts.Config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.router)
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	port := s.opts.Config.Port
	if port == 0 {
		port = 8080
	}
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  durationOr(s.opts.Config.ReadTimeout, 15*time.Second),
		WriteTimeout: durationOr(s.opts.Config.WriteTimeout, 15*time.Second),
	}
	s.logger.Info("http server starting", map[string]interface{}{"port": port})
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func durationOr(ms int, fallback time.Duration) time.Duration {
	if d := config.GetDuration(ms); d > 0 {
		return d
	}
	return fallback
}
