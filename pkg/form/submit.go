package form

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-formbind/pkg/field"
	"github.com/goliatone/go-formbind/pkg/validation"
)

// SubmitEvent is the event a presentation layer hands to a submit handler.
type SubmitEvent interface {
	PreventDefault()
}

// SuccessFunc receives a snapshot that passed every schema rule.
type SuccessFunc func(ctx context.Context, values field.Snapshot) error

// SubmitHandler is the value returned by HandleSubmit.
type SubmitHandler func(ctx context.Context, event SubmitEvent) error

// Result describes the outcome of one submit action.
type Result struct {
	// Submitted is true when the snapshot passed validation and onSuccess ran.
	Submitted bool
	// Values is the snapshot that was validated.
	Values field.Snapshot
	// Failures lists the violations that blocked the submission.
	Failures []validation.Failure
}

// HandleSubmit returns a handler that suppresses the event's default action
// and then runs Submit. A blocked submission returns nil; an error from
// onSuccess is returned unmodified.
func (f *Form) HandleSubmit(onSuccess SuccessFunc) SubmitHandler {
	return func(ctx context.Context, event SubmitEvent) error {
		if event != nil {
			event.PreventDefault()
		}
		_, err := f.Submit(ctx, onSuccess)
		return err
	}
}

// Submit snapshots the fields, clears the error store and validates the whole
// snapshot. When every rule passes onSuccess is called exactly once with that
// snapshot and its error is returned as is. Otherwise the error store is
// replaced with the failures and onSuccess is not called.
//
// Submission never waits for in-flight field validations; it always
// validates fresh values. Field validations still running when Submit starts
// are superseded and their results discarded.
func (f *Form) Submit(ctx context.Context, onSuccess SuccessFunc) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		snapshot   field.Snapshot
		superseded map[string]uint64
	)
	if err := f.do(ctx, func() {
		snapshot = f.registry.Snapshot()
		superseded = f.supersede()
		f.store.ClearAll()
	}); err != nil {
		return Result{}, err
	}

	vctx, cancel := f.validationContext(ctx)
	failures, err := f.adapter.ValidateAll(vctx, snapshot)
	cancel()
	if err != nil {
		f.post(func() { f.settle(superseded, nil, err) })
		return Result{Values: snapshot}, err
	}

	if len(failures) > 0 {
		if err := f.do(ctx, func() {
			f.store.ReplaceAll(failures)
			f.settle(superseded, failures, nil)
		}); err != nil {
			return Result{Values: snapshot, Failures: failures}, err
		}
		f.logger.Debug("submit blocked", slog.Int("failures", len(failures)))
		return Result{Values: snapshot, Failures: failures}, nil
	}

	if len(superseded) > 0 {
		_ = f.do(ctx, func() { f.settle(superseded, nil, nil) })
	}
	result := Result{Submitted: true, Values: snapshot}
	if onSuccess == nil {
		return result, nil
	}
	return result, onSuccess(ctx, snapshot)
}

// SubmitAs adapts a typed callback into a SuccessFunc. The snapshot is
// decoded into T through its JSON field tags.
func SubmitAs[T any](fn func(ctx context.Context, data T) error) SuccessFunc {
	return func(ctx context.Context, values field.Snapshot) error {
		var data T
		if err := values.Decode(&data); err != nil {
			return fmt.Errorf("form: decode submission: %w", err)
		}
		return fn(ctx, data)
	}
}
