/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/acronis/go-admission/log"
)

// Opts represents an options for Service.
type Opts struct {
	ShutdownSignals []os.Signal
}

// Service starts a unit, registers its metrics and stops it gracefully
// when the context is done or a shutdown signal is received.
type Service struct {
	Unit    Unit
	Signals chan os.Signal
	Logger  log.FieldLogger
	Opts    Opts
}

// New creates new Service which will start and stop passing unit.
func New(logger log.FieldLogger, unit Unit) *Service {
	return NewWithOpts(logger, unit, Opts{
		ShutdownSignals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	})
}

// NewWithOpts is a more configurable version of New.
func NewWithOpts(logger log.FieldLogger, unit Unit, opts Opts) *Service {
	return &Service{
		Signals: make(chan os.Signal, 1),
		Unit:    unit,
		Logger:  logger,
		Opts:    opts,
	}
}

// Start wraps StartContext using the background context.
func (s *Service) Start() error {
	return s.StartContext(context.Background())
}

// StartContext starts the unit in a separate goroutine and blocks until a fatal error occurs,
// the unit finishes on its own, ctx is done, or a shutdown signal is received.
func (s *Service) StartContext(ctx context.Context) error {
	if mr, ok := s.Unit.(MetricsRegisterer); ok {
		mr.MustRegisterMetrics()
		defer mr.UnregisterMetrics()
	}

	fatalError := make(chan error, 1)
	startDone := make(chan struct{})
	go func() {
		defer close(startDone)
		s.Unit.Start(fatalError)
	}()

	if len(s.Opts.ShutdownSignals) != 0 {
		signal.Notify(s.Signals, s.Opts.ShutdownSignals...)
		defer signal.Stop(s.Signals)
	}

	select {
	case <-ctx.Done():
		s.Logger.Info("context is canceled, service will be stopped")
	case sig := <-s.Signals:
		s.Logger.Info("service got signal", log.String("signal", sig.String()))
	case err := <-fatalError:
		s.Logger.Error("service fatal error", log.Error(err))
		return fmt.Errorf("fatal error: %w", err)
	case <-s.finished(startDone):
		// Units returning from Start after doing all their work (e.g. a bounded simulation) end the service.
		select {
		case err := <-fatalError:
			s.Logger.Error("service fatal error", log.Error(err))
			return fmt.Errorf("fatal error: %w", err)
		default:
		}
		s.Logger.Info("service unit finished its work")
	}

	if err := s.Unit.Stop(true); err != nil {
		return fmt.Errorf("stop service gracefully: %w", err)
	}
	return nil
}

// finished returns startDone for units declaring that returning from Start means completion, and nil otherwise.
func (s *Service) finished(startDone chan struct{}) <-chan struct{} {
	if fu, ok := s.Unit.(FiniteUnit); ok && fu.Finite() {
		return startDone
	}
	return nil
}
