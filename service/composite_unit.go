/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package service

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/atomic"
)

// CompositeUnit represents a composition of service units and implements Composite design pattern.
type CompositeUnit struct {
	Units []Unit
}

var _ FiniteUnit = (*CompositeUnit)(nil)

// NewCompositeUnit creates a new composite unit.
func NewCompositeUnit(units ...Unit) *CompositeUnit {
	return &CompositeUnit{units}
}

// Start launches all units concurrently, each in its own goroutine, and blocks until all Start calls return.
//
// If any unit reports a fatal error, all other units are stopped non-gracefully,
// and a CompositeUnitError with the fatal errors and the stop errors is sent to the provided channel.
func (cu *CompositeUnit) Start(fatalError chan<- error) {
	fatalErrs := make([]chan error, len(cu.Units))
	for i := range fatalErrs {
		fatalErrs[i] = make(chan error, 1)
	}

	ok := make(chan bool, len(cu.Units))
	running := atomic.NewInt32(int32(len(cu.Units))) //nolint:gosec // unit count is small
	for i := range cu.Units {
		go func(i int) {
			cu.Units[i].Start(fatalErrs[i])
			if len(fatalErrs[i]) != 0 {
				ok <- false
				return
			}
			if running.Dec() == 0 {
				ok <- true
			}
		}(i)
	}

	if len(cu.Units) == 0 || <-ok {
		return
	}

	stopErr := cu.Stop(false)

	var errs []error
	for _, fatalErr := range fatalErrs {
		select {
		case err := <-fatalErr:
			errs = append(errs, err)
		default:
		}
	}
	var cuErr *CompositeUnitError
	if stopErr != nil && errors.As(stopErr, &cuErr) {
		errs = append(errs, cuErr.UnitErrors...)
	}
	if len(errs) > 0 {
		fatalError <- &CompositeUnitError{errs}
	}
}

// Stop stops all units in the composition, each in its own goroutine.
// Errors are collected into a single CompositeUnitError.
func (cu *CompositeUnit) Stop(gracefully bool) error {
	results := make(chan error, len(cu.Units))

	var wg sync.WaitGroup
	wg.Add(len(cu.Units))
	for _, u := range cu.Units {
		go func(u Unit) {
			defer wg.Done()
			results <- u.Stop(gracefully)
		}(u)
	}
	wg.Wait()
	close(results)

	var errs []error
	for err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &CompositeUnitError{errs}
	}
	return nil
}

// Finite reports true when every unit of the composition is finite.
func (cu *CompositeUnit) Finite() bool {
	for _, u := range cu.Units {
		if fu, ok := u.(FiniteUnit); !ok || !fu.Finite() {
			return false
		}
	}
	return len(cu.Units) > 0
}

// MustRegisterMetrics registers metrics in Prometheus client and panics if any error occurs.
func (cu *CompositeUnit) MustRegisterMetrics() {
	for _, u := range cu.Units {
		if mr, ok := u.(MetricsRegisterer); ok {
			mr.MustRegisterMetrics()
		}
	}
}

// UnregisterMetrics unregisters metrics in Prometheus client.
func (cu *CompositeUnit) UnregisterMetrics() {
	for _, u := range cu.Units {
		if mr, ok := u.(MetricsRegisterer); ok {
			mr.UnregisterMetrics()
		}
	}
}

// CompositeUnitError is an error which may occurs in CompositeUnit's methods.
type CompositeUnitError struct {
	UnitErrors []error
}

// Error returns a string representation of a units composition error.
func (cue *CompositeUnitError) Error() string {
	msgs := make([]string, 0, len(cue.UnitErrors))
	for _, err := range cue.UnitErrors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap returns the errors of the units.
func (cue *CompositeUnitError) Unwrap() []error {
	return cue.UnitErrors
}
