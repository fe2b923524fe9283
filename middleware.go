package validy

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ValidatorMiddleware wraps a Validator with cross-cutting behavior (logging, timeout).
type ValidatorMiddleware func(Validator) Validator

// Chain applies mws to v in onion order: the first middleware is the outermost.
func Chain(v Validator, mws ...ValidatorMiddleware) Validator {
	for i := len(mws) - 1; i >= 0; i-- {
		v = mws[i](v)
	}
	return v
}

// WithValidatorLogging returns a middleware that logs the duration and outcome of each validator.
func WithValidatorLogging(logger *slog.Logger) ValidatorMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Validator) Validator {
		return func(ctx context.Context, value any) (Result, error) {
			start := time.Now()
			res, err := next(ctx, value)
			dur := time.Since(start)
			switch {
			case err != nil:
				logger.ErrorContext(ctx, "validator error", "duration", dur, "error", err)
			case !res.Valid:
				logger.InfoContext(ctx, "validator failed", "duration", dur, "errors", len(res.Errors))
			default:
				logger.DebugContext(ctx, "validator passed", "duration", dur)
			}
			return res, err
		}
	}
}

// WithValidatorTimeout returns a middleware that rejects a validator still running after d.
// The validator keeps running in the background until it returns.
func WithValidatorTimeout(d time.Duration) ValidatorMiddleware {
	return func(next Validator) Validator {
		if d <= 0 {
			return next
		}
		return func(ctx context.Context, value any) (Result, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			type settled struct {
				res Result
				err error
			}
			done := make(chan settled, 1)
			go func() {
				res, err := next(ctx, value)
				done <- settled{res: res, err: err}
			}()
			select {
			case s := <-done:
				return s.res, s.err
			case <-ctx.Done():
				return Result{}, fmt.Errorf("validator timed out after %s: %w", d, ctx.Err())
			}
		}
	}
}
