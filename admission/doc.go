/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package admission provides a multi-tier admission controller.
//
// An attempt is admitted only when it obtains, in this order, a permit of the global request pool,
// a permit of the global actor pool (taken once per actor while the actor has a live per-actor pool)
// and a permit of the actor's own pool. Every tier waits at most the configured acquire timeout.
// After the unit of work is performed, everything is released in reverse order, and the per-actor
// pool is dropped when its last holder leaves.
//
// Denials, cancellations and internal errors never surface as errors to the caller:
// Controller.AttemptAdmission returns a bool, and the details are delivered to an Observer
// (see LoggingObserver, PrometheusMetrics and MultiObserver).
package admission
