// Package validation adapts an external schema into the two operations the
// form engine relies on: validating one field against a snapshot, and
// validating the whole snapshot with collect-all semantics.
//
// Schemas report rule violations as Failures, a slice of path-tagged messages
// that implements error. Anything else a schema returns is an infrastructure
// error and is surfaced unchanged (wrapped) to the caller. When a schema
// reports several messages for one path, only the first is kept.
//
// Misuse handling is explicit: NewAdapter rejects a nil schema with
// ErrInvalidSchema by default. WithLenientSchema restores the permissive
// behaviour where validation silently passes.
package validation
