package form

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-formbind/pkg/debounce"
)

// DefaultDebounceDelay is the quiet period before a field validates.
const DefaultDebounceDelay = 500 * time.Millisecond

// Option configures a Form.
type Option func(*Form)

// WithDebounce overrides the per-field quiet period. Non-positive values are
// ignored.
func WithDebounce(delay time.Duration) Option {
	return func(f *Form) {
		if delay > 0 {
			f.delay = delay
		}
	}
}

// WithValidateTimeout bounds every schema call. Zero keeps validations
// unbounded.
func WithValidateTimeout(timeout time.Duration) Option {
	return func(f *Form) {
		if timeout >= 0 {
			f.validateTimeout = timeout
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithStatusHook registers a per-field status observer. The hook runs on the
// form's event goroutine.
func WithStatusHook(hook StatusHook) Option {
	return func(f *Form) {
		f.statusHook = hook
	}
}

// WithAfterFunc overrides the debounce timer source.
func WithAfterFunc(fn debounce.AfterFunc) Option {
	return func(f *Form) {
		if fn != nil {
			f.afterFunc = fn
		}
	}
}

// WithLenientSchema makes a nil schema a logged no-op instead of an error.
func WithLenientSchema() Option {
	return func(f *Form) {
		f.lenient = true
	}
}
