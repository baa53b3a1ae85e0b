// Package field tracks the named inputs mounted by a presentation layer.
//
// A Registry owns one descriptor per field name. Register hands out a Binding
// that the presentation layer attaches to a concrete input element; every
// later value change on that element is visible to Snapshot. Registering the
// same name twice returns the same descriptor, so identity survives
// re-renders. Snapshot is the single seam where the imperative element state
// becomes an immutable value that validation can consume.
package field
