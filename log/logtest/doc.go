/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

// Package logtest provides a recording log.FieldLogger for asserting on logged entries in tests.
package logtest
