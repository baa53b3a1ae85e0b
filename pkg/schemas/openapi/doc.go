// Package openapi validates form snapshots against the request body schema
// of an OpenAPI 3 operation, using kin-openapi for loading and validation.
//
// Snapshot strings are coerced to the declared property types and blank
// values are treated as absent. Two vendor extensions are understood on
// properties:
//
//	x-messages: {minLength: "Username must be at least 3 characters"}
//	x-equals: password
package openapi
