package validy

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateObject_Absent(t *testing.T) {
	eng := New()
	ctx := context.Background()

	res, err := eng.Validate(ctx, &Schema{Type: KindObject, IsRequired: Ptr(false)}, nil)
	require.NoError(t, err)
	assert.Equal(t, Valid(), res)

	res, err = eng.Validate(ctx, &Schema{Type: KindObject}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"expected to have type='object', but saw 'nil' instead"}, res.Errors)
}

func TestValidateObject_TypeMismatch(t *testing.T) {
	eng := New()
	for _, v := range []any{5, "x", []any{}, true} {
		res, err := eng.Validate(context.Background(), KindObject, v)
		require.NoError(t, err)
		require.False(t, res.Valid)
		assert.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "expected to have type='object', but saw '")
	}
}

func TestValidateObject_NoProperties(t *testing.T) {
	eng := New()
	res, err := eng.Validate(context.Background(), &Schema{Type: KindObject}, map[string]any{"anything": 1})
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateObject_OnlyFailingPropertyReported(t *testing.T) {
	eng := New()
	s := &Schema{Type: KindObject, Properties: Props(
		Prop("name", KindString),
		Prop("age", KindNumber),
	)}
	res, err := eng.Validate(context.Background(), s, map[string]any{"name": "Ada", "age": "old"})
	require.NoError(t, err)
	assert.Equal(t, []string{"->age expected to have type='number', but saw 'string' instead"}, res.Errors)
}

func TestValidateObject_NestedPrefixes(t *testing.T) {
	eng := New()
	s := &Schema{Type: KindObject, Properties: Props(
		Prop("address", &Schema{Type: KindObject, Properties: Props(
			Prop("zip", KindString),
		)}),
	)}
	res, err := eng.Validate(context.Background(), s, map[string]any{"address": map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"->address ->zip is required"}, res.Errors)
}

func TestValidateObject_DeclarationOrderNotCompletionOrder(t *testing.T) {
	eng := New()
	slow := func(d time.Duration) Validator {
		return func(ctx context.Context, _ any) (Result, error) {
			time.Sleep(d)
			return Invalid("slow " + d.String()), nil
		}
	}
	s := &Schema{Type: KindObject, Properties: Props(
		Prop("first", &Schema{Type: KindNumber, Validators: []Validator{slow(30 * time.Millisecond)}}),
		Prop("second", &Schema{Type: KindNumber, Validators: []Validator{slow(0)}}),
		Prop("third", &Schema{Type: KindNumber, Validators: []Validator{slow(10 * time.Millisecond)}}),
	)}
	res, err := eng.Validate(context.Background(), s, map[string]any{"first": 1, "second": 2, "third": 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"->first slow 30ms", "->second slow 0s", "->third slow 10ms"}, res.Errors)
}

func TestValidateObject_PropertiesRunConcurrently(t *testing.T) {
	eng := New()
	var running, peak atomic.Int32
	track := func(ctx context.Context, _ any) (Result, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		running.Add(-1)
		return Valid(), nil
	}
	s := &Schema{Type: KindObject, Properties: Props(
		Prop("a", &Schema{Type: KindNumber, Validators: []Validator{track}}),
		Prop("b", &Schema{Type: KindNumber, Validators: []Validator{track}}),
		Prop("c", &Schema{Type: KindNumber, Validators: []Validator{track}}),
	)}
	res, err := eng.Validate(context.Background(), s, map[string]any{"a": 1, "b": 2, "c": 3})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Greater(t, peak.Load(), int32(1))
}

func TestValidateObject_PreprocessorMutatesInPlace(t *testing.T) {
	eng := New()
	s := &Schema{
		Type: KindObject,
		Properties: Props(
			Prop("age", KindNumber),
			Prop("name", KindString),
		),
		Preprocessors: map[string]Preprocessor{
			"age": PreprocessWith(func(_ context.Context, v any) (any, error) {
				return v.(int) + 1, nil
			}),
		},
	}
	obj := map[string]any{"age": 5, "name": 7}
	res, err := eng.Validate(context.Background(), s, obj)
	require.NoError(t, err)
	assert.False(t, res.Valid, "name is not a string")
	assert.Equal(t, 6, obj["age"])
}

func TestValidateObject_NamedPreprocessor(t *testing.T) {
	eng := New()
	s := &Schema{
		Type:       KindObject,
		Properties: Props(Prop("email", &Schema{Type: KindString, Equals: "ada@example.com"})),
		Preprocessors: map[string]Preprocessor{
			"email": PreprocessNamed("lowercase"),
		},
	}
	obj := map[string]any{"email": "ADA@example.com"}
	res, err := eng.Validate(context.Background(), s, obj)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "ada@example.com", obj["email"])
}

func TestValidateObject_UnknownPreprocessor(t *testing.T) {
	eng := New()
	s := &Schema{Type: KindObject, Preprocessors: map[string]Preprocessor{"x": PreprocessNamed("nope")}}
	_, err := eng.Validate(context.Background(), s, map[string]any{"x": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPreprocessor)
	assert.Contains(t, err.Error(), "preprocessor 'nope' is unknown")
}

func TestValidateObject_PreprocessorErrorAborts(t *testing.T) {
	eng := New()
	boom := errors.New("boom")
	s := &Schema{Type: KindObject, Preprocessors: map[string]Preprocessor{
		"x": PreprocessWith(func(context.Context, any) (any, error) { return nil, boom }),
		"y": PreprocessWith(func(context.Context, any) (any, error) { return "changed", nil }),
	}}
	obj := map[string]any{"x": 1, "y": "orig"}
	_, err := eng.Validate(context.Background(), s, obj)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "orig", obj["y"], "keyed results are stored only when all preprocessors succeed")
}

func TestValidateObject_PreprocessorPanicRecovered(t *testing.T) {
	eng := New()
	s := &Schema{Type: KindObject, Preprocessors: map[string]Preprocessor{
		"x": PreprocessWith(func(context.Context, any) (any, error) { panic("bad transform") }),
	}}
	_, err := eng.Validate(context.Background(), s, map[string]any{"x": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: bad transform")
}

func TestValidateObject_WildcardRunsAfterKeyed(t *testing.T) {
	eng := New()
	var seen any
	s := &Schema{
		Type:       KindObject,
		Properties: Props(Prop("total", KindNumber)),
		Preprocessors: map[string]Preprocessor{
			"a": PreprocessNamed("number"),
			WildcardKey: PreprocessWith(func(_ context.Context, v any) (any, error) {
				obj := v.(map[string]any)
				seen = obj["a"]
				obj["total"] = obj["a"].(float64) * 2
				return "ignored", nil
			}),
		},
	}
	obj := map[string]any{"a": "21"}
	res, err := eng.Validate(context.Background(), s, obj)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 21.0, seen)
	assert.Equal(t, 42.0, obj["total"])
	_, hasWildcard := obj[WildcardKey]
	assert.False(t, hasWildcard)
}

func TestValidateObject_Struct(t *testing.T) {
	type user struct {
		Name string `mapstructure:"name"`
		Age  int    `mapstructure:"age"`
	}
	eng := New()
	s := &Schema{Type: KindObject, Properties: Props(
		Prop("name", &Schema{Type: KindString, MinLength: Ptr(1)}),
		Prop("age", &Schema{Type: KindNumber, Min: Ptr(18.0)}),
	)}

	res, err := eng.Validate(context.Background(), s, user{Name: "Ada", Age: 36})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = eng.Validate(context.Background(), s, &user{Name: "", Age: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"->name expected to be at least 1 characters long, but was 0",
		"->age expected to be greater than or equal to 18, but saw 3",
	}, res.Errors)
}

func TestValidateObject_StringKeyedMap(t *testing.T) {
	eng := New()
	s := &Schema{Type: KindObject, Properties: Props(Prop("a", KindString))}
	res, err := eng.Validate(context.Background(), s, map[string]string{"a": "x"})
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateObject_TimeoutWaitsForPreprocessors(t *testing.T) {
	eng := New(WithTimeout(10 * time.Millisecond))
	s := &Schema{Type: KindObject, Preprocessors: map[string]Preprocessor{
		"a": PreprocessWith(func(_ context.Context, v any) (any, error) {
			time.Sleep(40 * time.Millisecond)
			return v, nil
		}),
		WildcardKey: PreprocessWith(func(_ context.Context, v any) (any, error) {
			time.Sleep(40 * time.Millisecond)
			v.(map[string]any)["late"] = true
			return nil, nil
		}),
	}}
	obj := map[string]any{"a": 1}
	_, err := eng.Validate(context.Background(), s, obj)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the preprocessors are done; writing to obj now must not race with them
	obj["caller"] = 1
	assert.Equal(t, map[string]any{"a": 1, "caller": 1}, obj)
}

func TestValidateObject_TimeoutDuringWildcard(t *testing.T) {
	eng := New(WithTimeout(10 * time.Millisecond))
	s := &Schema{Type: KindObject, Preprocessors: map[string]Preprocessor{
		WildcardKey: PreprocessWith(func(_ context.Context, v any) (any, error) {
			time.Sleep(40 * time.Millisecond)
			v.(map[string]any)["late"] = true
			return nil, nil
		}),
	}}
	obj := map[string]any{"a": 1}
	_, err := eng.Validate(context.Background(), s, obj)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	obj["caller"] = 1
	assert.Equal(t, map[string]any{"a": 1, "caller": 1, "late": true}, obj)
}

func TestValidateObject_TimeoutWaitsForValidators(t *testing.T) {
	eng := New(WithTimeout(10 * time.Millisecond))
	var finished atomic.Bool
	s := &Schema{Type: KindObject, Validators: []Validator{
		func(_ context.Context, v any) (Result, error) {
			time.Sleep(40 * time.Millisecond)
			_ = v.(map[string]any)["a"]
			finished.Store(true)
			return Valid(), nil
		},
	}}
	obj := map[string]any{"a": 1}
	_, err := eng.Validate(context.Background(), s, obj)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, finished.Load())
	obj["caller"] = 1
}
