package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-formbind/pkg/debounce"
	"github.com/goliatone/go-formbind/pkg/errorstore"
	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/validation"
)

var (
	// ErrClosed is returned by operations on a form that has been closed.
	ErrClosed = errors.New("form: closed")
	// ErrUnknownField is returned when an operation names a field that is not
	// registered.
	ErrUnknownField = errors.New("form: unknown field")
)

// Form binds registered fields to a schema. All state changes happen on a
// single event goroutine; schema calls run beside it and post their results
// back, where a per-field generation token decides whether they still apply.
type Form struct {
	registry  *field.Registry
	store     *errorstore.Store
	adapter   *validation.Adapter
	scheduler *debounce.Scheduler

	delay           time.Duration
	validateTimeout time.Duration
	logger          *slog.Logger
	statusHook      StatusHook
	afterFunc       debounce.AfterFunc
	lenient         bool

	// owned by the event goroutine
	tokens   map[string]uint64
	inflight map[string]uint64

	statusMu sync.RWMutex
	status   map[string]Status

	events    chan func()
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	baseCtx     context.Context
	cancelBase  context.CancelFunc
	unsubscribe func()
}

// New builds a form over schema and starts its event goroutine. Call Close
// when the form is unmounted.
func New(schema validation.Schema, options ...Option) (*Form, error) {
	f := &Form{
		registry: field.NewRegistry(),
		store:    errorstore.New(),
		delay:    DefaultDebounceDelay,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tokens:   make(map[string]uint64),
		inflight: make(map[string]uint64),
		status:   make(map[string]Status),
		events:   make(chan func(), 64),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}

	adapterOpts := []validation.AdapterOption{validation.WithLogger(f.logger)}
	if f.lenient {
		adapterOpts = append(adapterOpts, validation.WithLenientSchema())
	}
	adapter, err := validation.NewAdapter(schema, adapterOpts...)
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	f.adapter = adapter

	var schedulerOpts []debounce.Option
	if f.afterFunc != nil {
		schedulerOpts = append(schedulerOpts, debounce.WithAfterFunc(f.afterFunc))
	}
	f.scheduler = debounce.New(schedulerOpts...)

	f.baseCtx, f.cancelBase = context.WithCancel(context.Background())
	f.unsubscribe = f.registry.Subscribe(func(name, _ string) {
		f.post(func() { f.onInput(name) })
	})

	go f.run()
	return f, nil
}

func (f *Form) run() {
	defer close(f.stopped)
	for {
		select {
		case fn := <-f.events:
			fn()
		case <-f.done:
			return
		}
	}
}

// post queues fn on the event goroutine. It reports false once the form is
// closed.
func (f *Form) post(fn func()) bool {
	select {
	case <-f.done:
		return false
	default:
	}
	select {
	case f.events <- fn:
		return true
	case <-f.done:
		return false
	}
}

// do runs fn on the event goroutine and waits for it to finish. Once queued,
// fn runs even if ctx is done first.
func (f *Form) do(ctx context.Context, fn func()) error {
	if ctx == nil {
		ctx = context.Background()
	}
	finished := make(chan struct{})
	if !f.post(func() {
		fn()
		close(finished)
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-f.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	}
}

// Register mounts a field and returns its binding. Registering an existing
// name returns the existing binding.
func (f *Form) Register(name string) (*field.Binding, error) {
	if f.Closed() {
		return nil, ErrClosed
	}
	return f.registry.Register(name)
}

// MustRegister is Register for static field lists.
func (f *Form) MustRegister(name string) *field.Binding {
	binding, err := f.Register(name)
	if err != nil {
		panic(err)
	}
	return binding
}

// Binding returns the binding registered under name.
func (f *Form) Binding(name string) (*field.Binding, bool) {
	return f.registry.Lookup(name)
}

// Fields returns the registered field names in registration order.
func (f *Form) Fields() []string {
	return f.registry.Names()
}

// Unregister unmounts a field: its pending validation is dropped, any
// in-flight result is invalidated, and its error entry is removed.
func (f *Form) Unregister(ctx context.Context, name string) error {
	name = field.NormalizeName(name)
	if !f.registry.Unregister(name) {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f.do(ctx, func() {
		f.scheduler.Cancel(name)
		f.tokens[name]++
		f.store.Clear(name)
		f.statusMu.Lock()
		delete(f.status, name)
		f.statusMu.Unlock()
	})
}

// Snapshot captures the current field values.
func (f *Form) Snapshot() field.Snapshot {
	return f.registry.Snapshot()
}

// Errors returns a copy of the current error map.
func (f *Form) Errors() map[string]string {
	return f.store.Read()
}

// Error returns the message recorded for name.
func (f *Form) Error(name string) (string, bool) {
	return f.store.Get(name)
}

// Subscribe observes published error states. Listeners run on the form's
// event goroutine and must not call blocking Form methods.
func (f *Form) Subscribe(listener errorstore.Listener) func() {
	return f.store.Subscribe(listener)
}

// Store exposes the error store for read-only presentation layers.
func (f *Form) Store() *errorstore.Store {
	return f.store
}

// Status returns the current status of name.
func (f *Form) Status(name string) Status {
	f.statusMu.RLock()
	defer f.statusMu.RUnlock()
	return f.status[name]
}

// Closed reports whether Close has been called.
func (f *Form) Closed() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Close unmounts the form. Pending debounce timers are cancelled, in-flight
// validations are cancelled through their context, and any result that
// arrives later is ignored.
func (f *Form) Close() error {
	f.closeOnce.Do(func() {
		f.scheduler.CancelAll()
		f.unsubscribe()
		f.cancelBase()
		close(f.done)
		<-f.stopped
		f.logger.Debug("form closed")
	})
	return nil
}

func (f *Form) onInput(name string) {
	if _, ok := f.registry.Lookup(name); !ok {
		return
	}
	f.tokens[name]++
	token := f.tokens[name]
	f.setStatus(name, StatusPending)
	f.scheduler.Schedule(name, f.delay, func() {
		f.post(func() { f.startField(name, token) })
	})
}

func (f *Form) startField(name string, token uint64) {
	if f.tokens[name] != token {
		return
	}
	snapshot := f.registry.Snapshot()
	f.inflight[name] = token
	ctx, cancel := f.validationContext(f.baseCtx)
	go func() {
		defer cancel()
		failure, err := f.adapter.ValidateField(ctx, name, snapshot)
		f.post(func() { f.applyField(name, token, failure, err) })
	}()
}

func (f *Form) applyField(name string, token uint64, failure *validation.Failure, err error) {
	if f.inflight[name] == token {
		delete(f.inflight, name)
	}
	if f.tokens[name] != token {
		f.logger.Debug("discarding stale field validation",
			slog.String("field", name),
			slog.Uint64("token", token),
			slog.Uint64("current", f.tokens[name]),
		)
		return
	}
	if err != nil {
		f.logger.Warn("field validation failed",
			slog.String("field", name),
			slog.String("error", err.Error()),
		)
		f.setStatus(name, StatusIdle)
		return
	}
	if failure == nil {
		f.store.Clear(name)
		f.setStatus(name, StatusValid)
		return
	}
	f.store.Set(name, failure.Message)
	f.setStatus(name, StatusInvalid)
}

// ValidateNow validates name immediately, skipping the debounce window. The
// result is applied to the error store like a debounced validation and is
// also returned.
func (f *Form) ValidateNow(ctx context.Context, name string) (*validation.Failure, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	name = field.NormalizeName(name)
	var (
		token    uint64
		snapshot field.Snapshot
		known    bool
	)
	if err := f.do(ctx, func() {
		if _, known = f.registry.Lookup(name); !known {
			return
		}
		f.scheduler.Cancel(name)
		f.tokens[name]++
		token = f.tokens[name]
		f.setStatus(name, StatusPending)
		snapshot = f.registry.Snapshot()
		f.inflight[name] = token
	}); err != nil {
		// The queued step may still run; undo its pending state if so.
		f.post(func() { f.abandon(name, token) })
		return nil, err
	}
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	vctx, cancel := f.validationContext(ctx)
	failure, err := f.adapter.ValidateField(vctx, name, snapshot)
	cancel()

	if applyErr := f.do(ctx, func() { f.applyField(name, token, failure, err) }); applyErr != nil {
		return nil, applyErr
	}
	if err != nil {
		return nil, err
	}
	return failure, nil
}

// abandon drops a validation that never ran. token is zero when the queued
// step was skipped.
func (f *Form) abandon(name string, token uint64) {
	if token == 0 || f.tokens[name] != token {
		return
	}
	if f.inflight[name] == token {
		delete(f.inflight, name)
	}
	f.setStatus(name, StatusIdle)
}

// supersede invalidates every in-flight field validation so that a submit
// outcome cannot be overwritten by a result computed on older values. It
// returns the affected names with their new tokens.
func (f *Form) supersede() map[string]uint64 {
	superseded := make(map[string]uint64, len(f.inflight))
	for name, token := range f.inflight {
		delete(f.inflight, name)
		if f.tokens[name] != token {
			continue
		}
		f.tokens[name]++
		superseded[name] = f.tokens[name]
	}
	return superseded
}

// settle gives superseded fields the status the submit outcome implies,
// unless newer input has arrived since.
func (f *Form) settle(superseded map[string]uint64, failures []validation.Failure, err error) {
	failed := make(map[string]struct{}, len(failures))
	for _, failure := range failures {
		failed[failure.Path] = struct{}{}
	}
	for name, token := range superseded {
		if f.tokens[name] != token {
			continue
		}
		switch _, ok := failed[name]; {
		case err != nil:
			f.setStatus(name, StatusIdle)
		case ok:
			f.setStatus(name, StatusInvalid)
		default:
			f.setStatus(name, StatusValid)
		}
	}
}

func (f *Form) validationContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = f.baseCtx
	}
	if f.validateTimeout > 0 {
		return context.WithTimeout(parent, f.validateTimeout)
	}
	return context.WithCancel(parent)
}

func (f *Form) setStatus(name string, status Status) {
	f.statusMu.Lock()
	previous, seen := f.status[name]
	f.status[name] = status
	f.statusMu.Unlock()

	if seen && previous == status {
		return
	}
	if f.statusHook != nil {
		f.statusHook(name, status)
	}
}
