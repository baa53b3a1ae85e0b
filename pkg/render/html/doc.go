// Package html renders error store state as HTML fragments through
// the go-template engine.
// Messages pass through a bluemonday policy (strict by default) before they
// reach a template.
package html
