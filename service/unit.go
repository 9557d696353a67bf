/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package service

// Unit represents a service unit that can be started and stopped.
type Unit interface {
	// Start begins the unit's operation.
	//
	// An implementation may initialize and return immediately, or block for the unit's lifetime.
	// If Start succeeds, it must not write anything to the provided error channel,
	// and the channel must not be used after Start has returned.
	Start(fatalErr chan<- error)

	// Stop halts the unit. If gracefully is true, the unit should attempt a clean shutdown.
	// It may be called even if Start has failed or was never called.
	Stop(gracefully bool) error
}

// FiniteUnit is implemented by units which do a bounded amount of work in Start.
// When Finite returns true, Service treats a return from Start as the end of the service.
type FiniteUnit interface {
	Finite() bool
}

// MetricsRegisterer is an interface for objects that can register its own metrics.
type MetricsRegisterer interface {
	MustRegisterMetrics()
	UnregisterMetrics()
}
