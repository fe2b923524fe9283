package validy

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/errgroup"
)

// validateObject checks value against an object schema.
//
// Preprocessors run first and rewrite fields of value in place when value is a map[string]any.
// Structs and pointers to structs are checked through a decoded copy, so their preprocessed
// fields are visible to validation but not written back. Declared properties are then validated
// concurrently; their errors are prefixed with "->name " and reported in declaration order.
func (e *Engine) validateObject(ctx context.Context, value any, s *Schema) (Result, error) {
	if isNil(value) && (isFalse(s.IsRequired) || isTrue(s.IsNullable)) {
		return Valid(), nil
	}
	obj, ok, err := objectView(value)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return typeMismatch(KindObject, value), nil
	}
	if err := e.preprocess(ctx, obj, s.Preprocessors); err != nil {
		return Result{}, err
	}
	return e.validateProperties(ctx, obj, s)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		return rv.IsNil()
	}
	return false
}

// objectView returns the map holding the fields of an object value. ok is false for values that
// are not objects.
func objectView(value any) (obj map[string]any, ok bool, err error) {
	if isNil(value) {
		return nil, false, nil
	}
	if m, isMap := value.(map[string]any); isMap {
		return m, true, nil
	}
	rv := reflect.Indirect(reflect.ValueOf(value))
	switch {
	case rv.Kind() == reflect.Struct:
		if err := mapstructure.Decode(rv.Interface(), &obj); err != nil {
			return nil, false, fmt.Errorf("decode %T as object: %w", value, err)
		}
		return obj, true, nil
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		obj = make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			obj[iter.Key().String()] = iter.Value().Interface()
		}
		return obj, true, nil
	}
	return nil, false, nil
}

// preprocess applies the keyed preprocessors concurrently, stores their results once all of them
// succeeded, then runs the wildcard preprocessor on the whole object. It waits for every
// preprocessor it started and reports a done ctx only after they returned.
func (e *Engine) preprocess(ctx context.Context, obj map[string]any, pps map[string]Preprocessor) error {
	if len(pps) == 0 {
		return nil
	}
	keys := make([]string, 0, len(pps))
	fns := make(map[string]PreprocessFunc, len(pps))
	for key, pp := range pps {
		fn, err := e.opts.preprocessors.resolve(pp)
		if err != nil {
			e.opts.logger.ErrorContext(ctx, "preprocessor lookup failed", "key", key, "error", err)
			return err
		}
		fns[key] = fn
		if key != WildcardKey {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	results := make([]any, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		input := obj[key]
		g.Go(e.guard(func() error {
			out, err := fns[key](gctx, input)
			if err != nil {
				return fmt.Errorf("preprocessor for %q: %w", key, err)
			}
			results[i] = out
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for i, key := range keys {
		obj[key] = results[i]
	}

	if fn, ok := fns[WildcardKey]; ok {
		err := e.guard(func() error {
			if _, err := fn(ctx, obj); err != nil {
				return fmt.Errorf("preprocessor for %q: %w", WildcardKey, err)
			}
			return nil
		})()
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}

// validateProperties fans out one engine call per declared property and gathers the results by
// declaration index.
func (e *Engine) validateProperties(ctx context.Context, obj map[string]any, s *Schema) (Result, error) {
	if s.Properties == nil || s.Properties.Len() == 0 {
		return Valid(), nil
	}
	props := make([]Property, 0, s.Properties.Len())
	for p := s.Properties.Oldest(); p != nil; p = p.Next() {
		props = append(props, Property{Name: p.Key, Ref: p.Value})
	}

	results := make([]Result, len(props))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range props {
		value := obj[p.Name]
		g.Go(func() error {
			res, err := e.validateRef(gctx, p.Ref, value)
			if err != nil {
				return err
			}
			results[i] = res.prefixed(p.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var errs []string
	for _, res := range results {
		errs = append(errs, res.Errors...)
	}
	if len(errs) > 0 {
		return Invalid(errs...), nil
	}
	return Valid(), nil
}

// guard converts a panic in fn into an error when panic recovery is enabled.
func (e *Engine) guard(fn func() error) func() error {
	if !e.opts.recoverPanics {
		return fn
	}
	return func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = &panicError{p: p}
			}
		}()
		return fn()
	}
}
