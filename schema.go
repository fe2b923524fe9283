package validy

import (
	"math"
	"reflect"
	"regexp"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind is the discriminator of a Schema. Only the four built-in kinds are valid.
type Kind string

// Built-in schema kinds.
const (
	KindNumber Kind = "number"
	KindString Kind = "string"
	KindArray  Kind = "array"
	KindObject Kind = "object"
)

var builtinKinds = []Kind{KindNumber, KindString, KindArray, KindObject}

func isBuiltin(name string) bool {
	return slices.Contains(builtinKinds, Kind(name))
}

// Schema describes the expected shape of a value. Pointer fields distinguish "unset" from an
// explicit zero so that a caller-supplied schema can be merged onto the defaults of its kind.
type Schema struct {
	Type       Kind
	IsRequired *bool
	IsNullable *bool
	// Equals requires the value to be equal to this literal (number or string).
	Equals any
	// Validators run concurrently after the structural checks passed.
	Validators []Validator

	// number
	Min            *float64
	Max            *float64
	IsInteger      *bool
	EnsureNotNaN   *bool
	EnsureIsFinite *bool

	// string and array
	MinLength *int
	MaxLength *int

	// string
	Matches *regexp.Regexp

	// array
	OfType Ref

	// object
	Properties *orderedmap.OrderedMap[string, Ref]
	// Preprocessors rewrite object fields before validation. The key "*" receives the whole object.
	Preprocessors map[string]Preprocessor
}

// Ref is a schema reference: Name, Kind, Num, AnyOf or *Schema.
// Values of other shapes are converted with ParseRef.
type Ref interface {
	isRef()
}

// Name refers to a built-in kind, a registered schema, or, when neither matches, a string literal
// the value must equal.
type Name string

// Num is a numeric literal the value must equal.
type Num float64

// AnyOf matches when any alternative matches; alternatives are tried in order.
type AnyOf []Ref

func (Name) isRef()    {}
func (Kind) isRef()    {}
func (Num) isRef()     {}
func (AnyOf) isRef()   {}
func (*Schema) isRef() {}

// Property is one entry of an object schema's Properties.
type Property struct {
	Name string
	Ref  Ref
}

// Prop builds a Property.
func Prop(name string, ref Ref) Property {
	return Property{Name: name, Ref: ref}
}

// Props builds an ordered property map; declaration order is the order of errors in results.
func Props(props ...Property) *orderedmap.OrderedMap[string, Ref] {
	m := orderedmap.New[string, Ref]()
	for _, p := range props {
		m.Set(p.Name, p.Ref)
	}
	return m
}

// Ptr returns a pointer to v; handy for the optional Schema fields.
func Ptr[T any](v T) *T {
	return &v
}

// ParseRef converts a dynamically typed schema reference into a Ref.
// Strings become Name, Go numbers become Num, slices become AnyOf and Schema values pass through.
// nil, "", 0 and NaN fail with ErrSchemaRequired; any other shape fails with ErrUnknownSchema.
func ParseRef(v any) (Ref, error) {
	switch r := v.(type) {
	case nil:
		return nil, &SchemaError{Err: ErrSchemaRequired}
	case *Schema:
		if r == nil {
			return nil, &SchemaError{Err: ErrSchemaRequired}
		}
		return r, nil
	case Schema:
		return &r, nil
	case Name:
		if r == "" {
			return nil, &SchemaError{Err: ErrSchemaRequired}
		}
		return r, nil
	case Kind:
		if r == "" {
			return nil, &SchemaError{Err: ErrSchemaRequired}
		}
		return r, nil
	case Num:
		return numRef(float64(r))
	case Ref:
		return r, nil
	case string:
		if r == "" {
			return nil, &SchemaError{Err: ErrSchemaRequired}
		}
		return Name(r), nil
	case []Ref:
		return AnyOf(r), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return numRef(rv.Convert(reflect.TypeFor[float64]()).Float())
	case reflect.Slice, reflect.Array:
		alts := make(AnyOf, rv.Len())
		for i := range rv.Len() {
			ref, err := ParseRef(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			alts[i] = ref
		}
		return alts, nil
	}
	return nil, schemaErrorf(ErrUnknownSchema, "could not understand the schema provided (%T)", v)
}

// numRef rejects the falsy numbers 0 and NaN like any other missing reference.
func numRef(f float64) (Ref, error) {
	if f == 0 || math.IsNaN(f) {
		return nil, &SchemaError{Err: ErrSchemaRequired}
	}
	return Num(f), nil
}

// isTrue reports whether an optional flag is set to true.
func isTrue(b *bool) bool { return b != nil && *b }

// isFalse reports whether an optional flag is explicitly set to false.
func isFalse(b *bool) bool { return b != nil && !*b }
