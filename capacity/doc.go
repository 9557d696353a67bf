/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package capacity provides a counting pool of permits with a bounded-wait acquisition.
//
// Every successful acquisition returns a Permit, and the permit is the only way to give
// capacity back, so a release can never happen without a matching acquire.
// The outcome of a wait is reported explicitly as Acquired, TimedOut or Cancelled.
package capacity
