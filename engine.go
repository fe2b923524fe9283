package validy

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// noMatch is the only error reported when no alternative of an AnyOf matches.
const noMatch = "object does not match any schema"

// Engine validates values against schema references. It owns its schema registry and its
// preprocessor registry, so engines are isolated from each other. An Engine is safe for
// concurrent use; see Validate for the one caveat about preprocessors.
type Engine struct {
	opts    options
	schemas *schemaRegistry
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.preprocessors == nil {
		o.preprocessors = DefaultPreprocessors()
	}
	return &Engine{opts: o, schemas: newSchemaRegistry()}
}

// Preprocessors returns the registry used to resolve preprocessors referenced by name.
func (e *Engine) Preprocessors() *Preprocessors {
	return e.opts.preprocessors
}

// Validate checks value against ref. ref is anything ParseRef accepts.
//
// A value that does not conform is reported in the Result, never as an error. The error is
// reserved for defects in the schema or the call: a missing or unrecognized reference, an inline
// schema without Type, an unknown preprocessor, a failing preprocessor, or the context being done.
//
// Object preprocessors rewrite the fields of a map[string]any value in place before it is checked.
// Validating the same map concurrently under two schemas that declare preprocessors is a data race.
// Other object values are checked through a copy and their preprocessed fields are not written
// back: structs and pointers to structs, and string-keyed maps of any other element type such as
// map[string]string.
//
// Custom validators never run for a nil value, including an absent optional object.
func (e *Engine) Validate(ctx context.Context, ref any, value any) (res Result, err error) {
	r, err := ParseRef(ref)
	if err != nil {
		e.opts.logger.ErrorContext(ctx, "invalid schema reference", "error", err)
		return Result{}, err
	}
	if e.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.timeout)
		defer cancel()
	}
	ctx, span := e.opts.tracer.Start(ctx, "validy.Validate",
		trace.WithAttributes(attribute.String("validy.ref", describeRef(r))))
	start := time.Now()
	defer func() {
		e.opts.metrics.observe(res, err, time.Since(start))
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		default:
			span.SetAttributes(
				attribute.Bool("validy.valid", res.Valid),
				attribute.Int("validy.errors", len(res.Errors)),
			)
		}
		span.End()
	}()

	res, err = e.validateRef(ctx, r, value)
	if err != nil {
		e.opts.logger.ErrorContext(ctx, "validation aborted", "ref", describeRef(r), "error", err)
	}
	return res, err
}

// validateRef dispatches on the reference variant. Precedence for names: built-in kind,
// registered schema, string literal.
func (e *Engine) validateRef(ctx context.Context, r Ref, value any) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	switch r := r.(type) {
	case Kind:
		if !isBuiltin(string(r)) {
			return Result{}, schemaErrorf(ErrUnknownSchema, "could not understand the schema provided (kind %q)", string(r))
		}
		return e.validateName(ctx, Name(r), value)
	case Name:
		return e.validateName(ctx, r, value)
	case AnyOf:
		return e.validateAnyOf(ctx, r, value)
	case Num:
		if _, err := numRef(float64(r)); err != nil {
			return Result{}, err
		}
		return e.validateSchema(ctx, literalSchema(KindNumber, float64(r)), value)
	case *Schema:
		if r == nil {
			return Result{}, &SchemaError{Err: ErrSchemaRequired}
		}
		if r.Type == "" {
			return Result{}, &SchemaError{Err: ErrSchemaNoType}
		}
		if !isBuiltin(string(r.Type)) {
			return Result{}, schemaErrorf(ErrUnknownSchema, "could not understand the schema provided (type %q)", r.Type)
		}
		return e.validateSchema(ctx, withDefaults(r), value)
	}
	return Result{}, schemaErrorf(ErrUnknownSchema, "could not understand the schema provided (%T)", r)
}

func (e *Engine) validateName(ctx context.Context, n Name, value any) (Result, error) {
	if n == "" {
		return Result{}, &SchemaError{Err: ErrSchemaRequired}
	}
	if isBuiltin(string(n)) {
		return e.validateSchema(ctx, defaultSchema(Kind(n)), value)
	}
	if s, ok := e.schemas.get(string(n)); ok {
		e.opts.logger.DebugContext(ctx, "validating registered schema", "schema", string(n))
		return e.validateSchema(ctx, withDefaults(s), value)
	}
	return e.validateSchema(ctx, literalSchema(KindString, string(n)), value)
}

// validateAnyOf returns the first valid alternative. Errors of the failed alternatives are not
// reported.
func (e *Engine) validateAnyOf(ctx context.Context, alts AnyOf, value any) (Result, error) {
	for i, alt := range alts {
		res, err := e.validateRef(ctx, alt, value)
		if err != nil {
			return Result{}, err
		}
		if res.Valid {
			return res, nil
		}
		e.opts.logger.DebugContext(ctx, "alternative did not match", "alternative", i, "errors", res.Errors)
	}
	return Invalid(noMatch), nil
}

// validateSchema runs the structural validator of s's kind and, only when it passed, the custom
// validators. Custom validators are skipped for absent values.
func (e *Engine) validateSchema(ctx context.Context, s *Schema, value any) (Result, error) {
	var (
		res Result
		err error
	)
	if s.Type == KindObject {
		res, err = e.validateObject(ctx, value, s)
	} else {
		res, err = leafFor(s.Type)(ctx, value, s, e)
	}
	// nil values never reach custom validators, optional or not
	if err != nil || !res.Valid || isNil(value) {
		return res, err
	}
	return e.checkValidators(ctx, s, value)
}

// describeRef names a reference for logs and span attributes.
func describeRef(r Ref) string {
	switch r := r.(type) {
	case Name:
		return string(r)
	case Kind:
		return string(r)
	case Num:
		return fmt.Sprintf("literal:%v", float64(r))
	case AnyOf:
		return fmt.Sprintf("anyOf[%d]", len(r))
	case *Schema:
		if r == nil {
			return "schema:nil"
		}
		return "schema:" + string(r.Type)
	}
	return fmt.Sprintf("%T", r)
}
