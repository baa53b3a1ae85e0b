// Package rules is a small declarative schema for string form fields.
//
// Schemas are built either in code:
//
//	schema := rules.Object(
//		rules.Field("username", rules.String().
//			Required("Username is required").
//			Min(3, "Username must be at least 3 characters")),
//		rules.Field("confirmPassword", rules.String().
//			EqualTo("password", "Passwords do not match")),
//	)
//
// or from a JSON/YAML document with Load or LoadYAML. The resulting
// ObjectSchema implements validation.Schema.
package rules
