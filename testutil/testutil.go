/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package testutil contains assertion helpers for tests of metrics, errors and network servers.
package testutil

type tHelper interface {
	Helper()
}
