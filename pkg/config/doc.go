// Package config loads the YAML/JSON configuration used by the formbind
// commands and turns it into form options and a slog logger.
//
//	debounce: 300ms
//	validateTimeout: 2s
//	log:
//	  level: debug
//	  format: json
//	server:
//	  addr: 127.0.0.1:8080
//	tui:
//	  output: pretty
//	  maxAttempts: 5
package config
