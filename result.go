package validy

// Result is the outcome of a validation call. Errors is non-empty if and only if Valid is false.
//
// Errors produced by nested object properties are prefixed with "->name " per level,
// outermost first, e.g. "->address ->zip is required".
type Result struct {
	Valid  bool
	Errors []string
}

// Valid returns a successful Result.
func Valid() Result {
	return Result{Valid: true}
}

// Invalid returns a failed Result carrying errs.
func Invalid(errs ...string) Result {
	return Result{Valid: false, Errors: errs}
}

// Err returns nil for a valid result and a *ValidationError (wrapping ErrValidation) otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Errors: append([]string(nil), r.Errors...)}
}

// prefixed returns r with every error message prefixed by "->name ".
func (r Result) prefixed(name string) Result {
	if r.Valid {
		return r
	}
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = "->" + name + " " + e
	}
	return Invalid(out...)
}
