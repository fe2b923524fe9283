// Package testutil provides test helpers for validy (e.g. MockValidator).
package testutil

import (
	"context"
	"sync/atomic"

	"github.com/skosovsky/validy"
)

// MockValidator is a configurable custom validator for tests.
type MockValidator struct {
	// Res is returned when Err is nil and Panic is nil. The zero value is an invalid result
	// without messages, so set it explicitly.
	Res   validy.Result
	Err   error
	Panic any
	// Block, when set, is waited on (or ctx) before returning.
	Block <-chan struct{}

	calls atomic.Int32
	last  atomic.Value
}

// Validator returns the validy.Validator backed by m.
func (m *MockValidator) Validator() validy.Validator {
	return func(ctx context.Context, value any) (validy.Result, error) {
		m.calls.Add(1)
		if value != nil {
			m.last.Store(value)
		}
		if m.Block != nil {
			select {
			case <-m.Block:
			case <-ctx.Done():
				return validy.Result{}, ctx.Err()
			}
		}
		if m.Panic != nil {
			panic(m.Panic)
		}
		if m.Err != nil {
			return validy.Result{}, m.Err
		}
		return m.Res, nil
	}
}

// Calls returns how many times the validator ran.
func (m *MockValidator) Calls() int {
	return int(m.calls.Load())
}

// LastValue returns the last non-nil value the validator saw.
func (m *MockValidator) LastValue() any {
	return m.last.Load()
}

// Passing returns a validator that always succeeds.
func Passing() validy.Validator {
	return (&MockValidator{Res: validy.Valid()}).Validator()
}

// Failing returns a validator that always fails with msgs.
func Failing(msgs ...string) validy.Validator {
	return (&MockValidator{Res: validy.Invalid(msgs...)}).Validator()
}

// Rejecting returns a validator that always returns err.
func Rejecting(err error) validy.Validator {
	return (&MockValidator{Err: err}).Validator()
}
