/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package admission

import "time"

// DenialReason names the tier at which an admission attempt was denied.
type DenialReason string

// Denial reasons.
const (
	DenialReasonNoRequestCapacity  DenialReason = "no-request-capacity"
	DenialReasonNoActorCapacity    DenialReason = "no-actor-capacity"
	DenialReasonNoPerActorCapacity DenialReason = "no-per-actor-capacity"
)

// Denial describes why an admission attempt was denied.
type Denial struct {
	Reason DenialReason

	// Cancelled is true when the wait ended because the caller's context was done
	// (cancelled or past its deadline) rather than because the acquire timeout elapsed.
	Cancelled bool
}

// Attempt identifies a single call of Controller.AttemptAdmission.
type Attempt struct {
	ID        string
	ActorID   string
	StartedAt time.Time
}

// Observer receives events about admission attempts.
// Implementations must be safe for concurrent use.
type Observer interface {
	// AdmissionStarted is called when an attempt begins acquiring capacity.
	AdmissionStarted(attempt Attempt)

	// AdmissionDenied is called after an attempt was denied and everything it held was released.
	AdmissionDenied(attempt Attempt, denial Denial)

	// AdmissionCompleted is called after an admitted attempt finished its work and released its capacity.
	AdmissionCompleted(attempt Attempt, elapsed time.Duration)

	// InternalError is called when an attempt is aborted because of a programming defect
	// or a failed unit of work.
	InternalError(attempt Attempt, err error)
}

// MultiObserver passes every event to all the underlying observers in order.
type MultiObserver []Observer

var _ Observer = MultiObserver(nil)

// AdmissionStarted implements Observer.
func (mo MultiObserver) AdmissionStarted(attempt Attempt) {
	for _, o := range mo {
		o.AdmissionStarted(attempt)
	}
}

// AdmissionDenied implements Observer.
func (mo MultiObserver) AdmissionDenied(attempt Attempt, denial Denial) {
	for _, o := range mo {
		o.AdmissionDenied(attempt, denial)
	}
}

// AdmissionCompleted implements Observer.
func (mo MultiObserver) AdmissionCompleted(attempt Attempt, elapsed time.Duration) {
	for _, o := range mo {
		o.AdmissionCompleted(attempt, elapsed)
	}
}

// InternalError implements Observer.
func (mo MultiObserver) InternalError(attempt Attempt, err error) {
	for _, o := range mo {
		o.InternalError(attempt, err)
	}
}

type disabledObserver struct{}

func (disabledObserver) AdmissionStarted(Attempt)                  {}
func (disabledObserver) AdmissionDenied(Attempt, Denial)           {}
func (disabledObserver) AdmissionCompleted(Attempt, time.Duration) {}
func (disabledObserver) InternalError(Attempt, error)              {}
