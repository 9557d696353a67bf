/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package logtest

import (
	"fmt"

	"github.com/acronis/go-admission/log"
)

func Example() {
	deny := func(actorID string, waiters int, logger log.FieldLogger) {
		logger.Warn("No capacity for user!", log.Int("waiters", waiters), log.String("actor", actorID))
	}

	logRecorder := NewRecorder()
	deny("Dionizy", 3, logRecorder)

	if logEntry, found := logRecorder.FindEntry("No capacity for user!"); found {
		fmt.Printf("[%s] %s\n", logEntry.Level, logEntry.Text)
		if waiters, found := logEntry.FindField("waiters"); found {
			fmt.Printf("waiters: %d\n", waiters.Int)
		}
		if actor, found := logEntry.FindField("actor"); found {
			fmt.Printf("actor: %s\n", actor.Bytes)
		}
	}

	// Output:
	// [warn] No capacity for user!
	// waiters: 3
	// actor: Dionizy
}
