/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package admission

import (
	"fmt"
	"time"

	"github.com/acronis/go-admission/log"
)

const (
	logMsgStarted            = "%s is starting processing"
	logMsgCompleted          = "%s is finishing request"
	logMsgNoRequestCapacity  = "No capacity for request!"
	logMsgNoActorCapacity    = "No capacity for user!"
	logMsgNoPerActorCapacity = "No capacity for users request!"
	logMsgInternalError      = "Internal error during processing"
)

// LoggingObserver is an Observer that writes every admission event to the logger.
type LoggingObserver struct {
	logger log.FieldLogger
}

var _ Observer = (*LoggingObserver)(nil)

// NewLoggingObserver creates a new LoggingObserver.
func NewLoggingObserver(logger log.FieldLogger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

// AdmissionStarted implements Observer.
func (lo *LoggingObserver) AdmissionStarted(attempt Attempt) {
	lo.loggerFor(attempt).Infof(logMsgStarted, attempt.ActorID)
}

// AdmissionDenied implements Observer.
func (lo *LoggingObserver) AdmissionDenied(attempt Attempt, denial Denial) {
	msg := logMsgNoRequestCapacity
	switch denial.Reason {
	case DenialReasonNoActorCapacity:
		msg = logMsgNoActorCapacity
	case DenialReasonNoPerActorCapacity:
		msg = logMsgNoPerActorCapacity
	}
	lo.loggerFor(attempt).Warn(msg,
		log.String("reason", string(denial.Reason)),
		log.Bool("cancelled", denial.Cancelled),
	)
}

// AdmissionCompleted implements Observer.
func (lo *LoggingObserver) AdmissionCompleted(attempt Attempt, elapsed time.Duration) {
	lo.loggerFor(attempt).Info(fmt.Sprintf(logMsgCompleted, attempt.ActorID),
		log.Int64("duration_ms", elapsed.Milliseconds()))
}

// InternalError implements Observer.
func (lo *LoggingObserver) InternalError(attempt Attempt, err error) {
	lo.loggerFor(attempt).Error(logMsgInternalError, log.Error(err))
}

func (lo *LoggingObserver) loggerFor(attempt Attempt) log.FieldLogger {
	return lo.logger.With(log.String("actor", attempt.ActorID), log.String("attempt_id", attempt.ID))
}
