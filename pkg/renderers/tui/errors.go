package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C or declining
	// to retry a blocked submission).
	ErrAborted = errors.New("tui: aborted")
	// ErrAttemptsExhausted is returned when the form was still invalid after
	// the configured number of submit attempts.
	ErrAttemptsExhausted = errors.New("tui: submit attempts exhausted")
	// ErrUnsupportedFormat is returned for an unknown output format.
	ErrUnsupportedFormat = errors.New("tui: unsupported output format")
)
