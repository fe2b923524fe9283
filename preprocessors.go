package validy

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cast"
)

// WildcardKey is the Preprocessors key whose transform receives the whole object.
const WildcardKey = "*"

// PreprocessFunc transforms a field value before validation. For the wildcard key it receives the
// whole object and its return value is discarded.
type PreprocessFunc func(ctx context.Context, value any) (any, error)

// Preprocessor is either an inline function or the name of a function held by the engine's
// Preprocessors registry. Build it with PreprocessWith or PreprocessNamed.
type Preprocessor struct {
	Name string
	Fn   PreprocessFunc
}

// PreprocessWith returns an inline Preprocessor.
func PreprocessWith(fn PreprocessFunc) Preprocessor {
	return Preprocessor{Fn: fn}
}

// PreprocessNamed returns a Preprocessor resolved by name at validation time.
func PreprocessNamed(name string) Preprocessor {
	return Preprocessor{Name: name}
}

// Preprocessors is a named set of preprocessing functions. It is owned by one engine
// (see WithPreprocessors) and is safe for concurrent use.
type Preprocessors struct {
	mu  sync.RWMutex
	fns map[string]PreprocessFunc
}

// NewPreprocessors returns an empty registry.
func NewPreprocessors() *Preprocessors {
	return &Preprocessors{fns: make(map[string]PreprocessFunc)}
}

// DefaultPreprocessors returns a registry with trim, lowercase, uppercase and number.
// Non-string inputs pass through the string transforms unchanged.
func DefaultPreprocessors() *Preprocessors {
	p := NewPreprocessors()
	p.MustRegister("trim", stringTransform(strings.TrimSpace))
	p.MustRegister("lowercase", stringTransform(strings.ToLower))
	p.MustRegister("uppercase", stringTransform(strings.ToUpper))
	p.MustRegister("number", func(_ context.Context, v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return v, nil //nolint:nilerr // unconvertible values are left for the number validator to report
		}
		return f, nil
	})
	return p
}

func stringTransform(fn func(string) string) PreprocessFunc {
	return func(_ context.Context, v any) (any, error) {
		if s, ok := v.(string); ok {
			return fn(s), nil
		}
		return v, nil
	}
}

// Register adds fn under name. It fails if name is empty, fn is nil or name is taken.
func (p *Preprocessors) Register(name string, fn PreprocessFunc) error {
	if name == "" {
		return &SchemaError{Reason: "preprocessor name is required", Err: ErrInvalidName}
	}
	if fn == nil {
		return &SchemaError{Reason: fmt.Sprintf("preprocessor %q has no function", name), Err: ErrInvalidFragment}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.fns[name]; ok {
		return schemaErrorf(ErrDuplicateSchema, "preprocessor %q already exists", name)
	}
	p.fns[name] = fn
	return nil
}

// MustRegister is like Register but panics on error. It returns p for chaining.
func (p *Preprocessors) MustRegister(name string, fn PreprocessFunc) *Preprocessors {
	if err := p.Register(name, fn); err != nil {
		panic(err)
	}
	return p
}

// Get returns the function registered under name.
func (p *Preprocessors) Get(name string) (PreprocessFunc, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fn, ok := p.fns[name]
	return fn, ok
}

// resolve returns the function a Preprocessor stands for.
func (p *Preprocessors) resolve(pp Preprocessor) (PreprocessFunc, error) {
	if pp.Fn != nil {
		return pp.Fn, nil
	}
	if p != nil {
		if fn, ok := p.Get(pp.Name); ok {
			return fn, nil
		}
	}
	return nil, schemaErrorf(ErrUnknownPreprocessor, "preprocessor '%s' is unknown", pp.Name)
}
