/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package diagserver provides an HTTP server exposing Prometheus metrics, pprof profiles
// and a snapshot of the admission controller state.
package diagserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acronis/go-admission/admission"
	"github.com/acronis/go-admission/log"
	"github.com/acronis/go-admission/service"
)

// StatsProvider returns a snapshot of the admission controller state.
type StatsProvider interface {
	Stats() admission.Stats
}

// Opts represents options for DiagServer.
type Opts struct {
	// Gatherer is used for serving /metrics. prometheus.DefaultGatherer is used if nil.
	Gatherer prometheus.Gatherer

	// Stats is served as JSON on /stats. The route is not registered if nil.
	Stats StatsProvider
}

// DiagServer is an HTTP server for diagnostics. It implements service.Unit interface.
type DiagServer struct {
	URL            string
	HTTPServer     *http.Server
	Logger         log.FieldLogger
	httpServerDone chan struct{}
}

var _ service.Unit = (*DiagServer)(nil)

// New creates a new diagnostics HTTP server.
func New(cfg *Config, logger log.FieldLogger, opts Opts) *DiagServer {
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID, chimiddleware.Recoverer, loggingMiddleware(logger))
	router.Get("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Mount("/debug", chimiddleware.Profiler())
	if opts.Stats != nil {
		router.Get("/stats", statsHandler(opts.Stats, logger))
	}

	httpServer := &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: time.Second * 5,
	}
	return &DiagServer{
		URL:            "http://" + httpServer.Addr,
		HTTPServer:     httpServer,
		Logger:         logger,
		httpServerDone: make(chan struct{}),
	}
}

// Start starts the server in a blocking way.
// If a fatal error occurs, it's sent into passed fatalError channel and should be processed outside.
func (s *DiagServer) Start(fatalError chan<- error) {
	defer close(s.httpServerDone)

	logger := s.Logger.With(log.String("address", s.HTTPServer.Addr))
	logger.Info("starting diagnostics HTTP server...")
	if err := s.HTTPServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			logger.Info("diagnostics HTTP server closed")
			return
		}
		logger.Error("diagnostics HTTP server error", log.Error(err))
		fatalError <- err
	}
}

// Stop closes the server. Diagnostics requests are never waited for, so gracefully is ignored.
func (s *DiagServer) Stop(gracefully bool) error {
	s.Logger.Info("closing diagnostics HTTP server...")
	if err := s.HTTPServer.Close(); err != nil {
		s.Logger.Error("diagnostics HTTP server closing error", log.Error(err))
		return fmt.Errorf("close diagnostics server: %w", err)
	}
	<-s.httpServerDone
	return nil
}

type statsResponse struct {
	InFlightRequests        int `json:"inFlightRequests"`
	Working                 int `json:"working"`
	ActiveActors            int `json:"activeActors"`
	AvailableRequestPermits int `json:"availableRequestPermits"`
	AvailableActorPermits   int `json:"availableActorPermits"`
}

func statsHandler(provider StatsProvider, logger log.FieldLogger) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		stats := provider.Stats()
		rw.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(rw).Encode(statsResponse(stats)); err != nil {
			logger.Error("failed to write stats response", log.Error(err))
		}
	}
}

func loggingMiddleware(logger log.FieldLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			wrw := chimiddleware.NewWrapResponseWriter(rw, r.ProtoMajor)
			next.ServeHTTP(wrw, r)
			duration := time.Since(startTime)
			logger.Debug(
				fmt.Sprintf("response completed in %.3fs", duration.Seconds()),
				log.String("request_id", chimiddleware.GetReqID(r.Context())),
				log.String("method", r.Method),
				log.String("uri", r.RequestURI),
				log.Int64("duration_ms", duration.Milliseconds()),
				log.Int("status", wrw.Status()),
				log.Int("bytes_sent", wrw.BytesWritten()),
			)
		})
	}
}
