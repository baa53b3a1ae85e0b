// Package jsonschema validates form snapshots against a JSON Schema document
// compiled with santhosh-tekuri/jsonschema.
//
// The root must be an object schema. Its top level properties are the form
// fields; x-messages and x-equals work as in the openapi package.
package jsonschema
