// Package validy validates arbitrary Go values against declarative schemas at runtime.
//
// # Overview
//
// A schema describes the expected shape of a value: a number, a string, an array or an object
// whose properties are themselves schemas. Validate walks the value and the schema together and
// returns a Result: either valid, or invalid with an ordered list of human-readable messages.
//
// Pipeline: schema reference → ParseRef (closed Ref union) → dispatch (built-in kind, registered
// name, literal, alternatives, inline Schema) → merge with the kind's defaults → structural check
// (leaf or object validator) → custom validators → Result.
//
// # Key concepts
//
//   - Two error channels: a value that does not conform is reported in the Result; a malformed
//     schema or an unresolvable reference is returned as an error (see SchemaError).
//   - Path-qualified messages: errors from object properties are prefixed with "->name " per level,
//     e.g. "->address ->zip is required", in property declaration order.
//   - Partial failure: custom validators run concurrently and all of them are waited for; a
//     validator returning an error becomes one message and never aborts its siblings.
//   - In-place preprocessing: object preprocessors rewrite fields of a map[string]any value
//     before it is checked. The caller's map is modified even when validation then fails.
//
// # Example
//
//	eng := validy.New()
//	eng.MustAddSchemaType("user", &validy.Schema{
//	    Properties: validy.Props(
//	        validy.Prop("name", validy.KindString),
//	        validy.Prop("age", &validy.Schema{Type: validy.KindNumber, Min: validy.Ptr(0.0)}),
//	    ),
//	    Preprocessors: map[string]validy.Preprocessor{"name": validy.PreprocessNamed("trim")},
//	})
//	res, err := eng.Validate(ctx, "user", map[string]any{"name": " Ada ", "age": -1})
//	// err == nil, res.Errors == []string{"->age expected to be greater than or equal to 0, but saw -1"}
package validy
