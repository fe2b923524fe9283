package validy

import (
	"maps"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// defaultSchema returns a fresh copy of the baseline schema for a built-in kind.
func defaultSchema(k Kind) *Schema {
	switch k {
	case KindNumber:
		return &Schema{
			Type:           KindNumber,
			IsRequired:     Ptr(true),
			IsNullable:     Ptr(false),
			EnsureNotNaN:   Ptr(true),
			EnsureIsFinite: Ptr(true),
		}
	case KindString:
		return &Schema{Type: KindString, IsRequired: Ptr(true), IsNullable: Ptr(false)}
	case KindArray:
		return &Schema{Type: KindArray, IsRequired: Ptr(true), IsNullable: Ptr(false)}
	case KindObject:
		return &Schema{Type: KindObject, IsRequired: Ptr(true), IsNullable: Ptr(false)}
	}
	return nil
}

// mergeSchema deep-merges override onto base and returns a new schema; neither input is modified.
// Set scalar fields of override replace those of base. Properties and Preprocessors are merged
// key by key, and a property present in both as inline schemas is merged recursively.
func mergeSchema(base, override *Schema) *Schema {
	if override == nil {
		out := *base
		return &out
	}
	out := *base
	if override.Type != "" {
		out.Type = override.Type
	}
	if override.IsRequired != nil {
		out.IsRequired = override.IsRequired
	}
	if override.IsNullable != nil {
		out.IsNullable = override.IsNullable
	}
	if override.Equals != nil {
		out.Equals = override.Equals
	}
	if override.Validators != nil {
		out.Validators = override.Validators
	}
	if override.Min != nil {
		out.Min = override.Min
	}
	if override.Max != nil {
		out.Max = override.Max
	}
	if override.IsInteger != nil {
		out.IsInteger = override.IsInteger
	}
	if override.EnsureNotNaN != nil {
		out.EnsureNotNaN = override.EnsureNotNaN
	}
	if override.EnsureIsFinite != nil {
		out.EnsureIsFinite = override.EnsureIsFinite
	}
	if override.MinLength != nil {
		out.MinLength = override.MinLength
	}
	if override.MaxLength != nil {
		out.MaxLength = override.MaxLength
	}
	if override.Matches != nil {
		out.Matches = override.Matches
	}
	if override.OfType != nil {
		out.OfType = override.OfType
	}
	out.Properties = mergeProperties(base.Properties, override.Properties)
	if override.Preprocessors != nil {
		merged := maps.Clone(base.Preprocessors)
		if merged == nil {
			merged = make(map[string]Preprocessor, len(override.Preprocessors))
		}
		maps.Copy(merged, override.Preprocessors)
		out.Preprocessors = merged
	}
	return &out
}

// mergeProperties keeps base's declaration order; keys only present in override are appended.
func mergeProperties(base, override *orderedmap.OrderedMap[string, Ref]) *orderedmap.OrderedMap[string, Ref] {
	if override == nil {
		return base
	}
	if base == nil {
		return override
	}
	out := orderedmap.New[string, Ref]()
	for p := base.Oldest(); p != nil; p = p.Next() {
		out.Set(p.Key, p.Value)
	}
	for p := override.Oldest(); p != nil; p = p.Next() {
		prev, ok := out.Get(p.Key)
		if ok {
			prevSchema, prevIsSchema := prev.(*Schema)
			nextSchema, nextIsSchema := p.Value.(*Schema)
			if prevIsSchema && nextIsSchema {
				out.Set(p.Key, mergeSchema(prevSchema, nextSchema))
				continue
			}
		}
		out.Set(p.Key, p.Value)
	}
	return out
}

// withDefaults merges s onto the defaults of its kind.
func withDefaults(s *Schema) *Schema {
	return mergeSchema(defaultSchema(s.Type), s)
}

// literalSchema is the shorthand for a bare literal used as a schema: equals that literal.
func literalSchema(k Kind, literal any) *Schema {
	s := defaultSchema(k)
	s.Equals = literal
	return s
}
