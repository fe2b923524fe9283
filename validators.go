package validy

import (
	"context"
	"fmt"
	"sync"
)

// Validator is a caller-supplied check run against a value that already passed the structural
// checks of its schema. A returned error is reported as an error entry of the result; it never
// aborts the validation call or the sibling validators.
type Validator func(ctx context.Context, value any) (Result, error)

// Predicate adapts a boolean check into a Validator failing with message.
func Predicate(fn func(value any) bool, message string) Validator {
	return func(_ context.Context, value any) (Result, error) {
		if fn(value) {
			return Valid(), nil
		}
		return Invalid(message), nil
	}
}

// validatorOutcome is the settled state of one Validator.
type validatorOutcome struct {
	res Result
	err error
}

// checkValidators runs every validator of s concurrently and waits for all of them, even once ctx
// is done.
// Rejections come first, then the errors of invalid results, each group in declaration order.
func (e *Engine) checkValidators(ctx context.Context, s *Schema, value any) (Result, error) {
	if len(s.Validators) == 0 {
		return Valid(), nil
	}
	outcomes := make([]validatorOutcome, len(s.Validators))
	var wg sync.WaitGroup
	for i, v := range s.Validators {
		wg.Go(func() {
			outcomes[i] = e.runValidator(ctx, i, v, value)
		})
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var rejections, failures []string
	for i, o := range outcomes {
		switch {
		case o.err != nil:
			e.opts.logger.WarnContext(ctx, "custom validator rejected", "validator", i, "error", o.err)
			e.opts.metrics.observeRejection()
			rejections = append(rejections, o.err.Error())
		case !o.res.Valid:
			if len(o.res.Errors) == 0 {
				failures = append(failures, fmt.Sprintf("validator #%d failed", i))
				continue
			}
			failures = append(failures, o.res.Errors...)
		}
	}
	if len(rejections) == 0 && len(failures) == 0 {
		return Valid(), nil
	}
	return Invalid(append(rejections, failures...)...), nil
}

func (e *Engine) runValidator(ctx context.Context, i int, v Validator, value any) (out validatorOutcome) {
	if v == nil {
		return validatorOutcome{err: fmt.Errorf("validator #%d is nil", i)}
	}
	v = Chain(v, e.opts.middlewares...)
	if e.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				out = validatorOutcome{err: &panicError{p: p}}
			}
		}()
	}
	res, err := v(ctx, value)
	return validatorOutcome{res: res, err: err}
}
