package validy

import (
	"context"
	"maps"
	"sync"
)

// SchemaEntry is the read view of one registered schema.
type SchemaEntry struct {
	// Schema is the stored fragment, tagged with Type KindObject. Callers must not mutate it.
	Schema *Schema
	// Validate validates value against the registered schema through the owning engine.
	Validate func(ctx context.Context, value any) (Result, error)
}

// schemaRegistry holds named object schemas. It is append-only: entries are never replaced or
// removed. Reads happen on every validation call that names a registered schema.
type schemaRegistry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
	view    map[string]SchemaEntry // derived from schemas; nil when stale
}

func newSchemaRegistry() *schemaRegistry {
	return &schemaRegistry{schemas: make(map[string]*Schema)}
}

// add stores a copy of fragment under name. Nothing is stored when an error is returned.
func (r *schemaRegistry) add(name string, fragment *Schema) error {
	if name == "" {
		return &SchemaError{Reason: "name is required", Err: ErrInvalidName}
	}
	if fragment == nil {
		return schemaErrorf(ErrInvalidFragment, "schema %q: object is required", name)
	}
	if isBuiltin(name) {
		return schemaErrorf(ErrReservedName,
			"you can't add a schema named %q because it's a name of a default schema, please consider another name to be used", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schemas[name]; ok {
		return schemaErrorf(ErrDuplicateSchema, "schema %q already exists", name)
	}
	stored := *fragment
	stored.Type = KindObject
	r.schemas[name] = &stored
	r.view = nil
	return nil
}

func (r *schemaRegistry) get(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// entries returns the cached read view, rebuilding it after a registration.
func (r *schemaRegistry) entries(e *Engine) map[string]SchemaEntry {
	r.mu.RLock()
	view := r.view
	r.mu.RUnlock()
	if view != nil {
		return maps.Clone(view)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.view == nil {
		r.view = make(map[string]SchemaEntry, len(r.schemas))
		for name, s := range r.schemas {
			r.view[name] = SchemaEntry{
				Schema: s,
				Validate: func(ctx context.Context, value any) (Result, error) {
					return e.Validate(ctx, Name(name), value)
				},
			}
		}
	}
	return maps.Clone(r.view)
}

// AddSchemaType registers fragment as a named object schema. The name can then be used as a
// schema reference. It fails, leaving the registry unchanged, when name is empty, fragment is nil,
// name is a built-in kind, or name is already registered.
func (e *Engine) AddSchemaType(name string, fragment *Schema) error {
	if err := e.schemas.add(name, fragment); err != nil {
		e.opts.logger.Error("schema registration failed", "schema", name, "error", err)
		return err
	}
	e.opts.logger.Debug("schema registered", "schema", name)
	return nil
}

// MustAddSchemaType is like AddSchemaType but panics on error. It returns e for chaining.
func (e *Engine) MustAddSchemaType(name string, fragment *Schema) *Engine {
	if err := e.AddSchemaType(name, fragment); err != nil {
		panic(err)
	}
	return e
}

// Schemas returns every registered schema by name. The returned map is a copy; the schemas in it
// are shared with the engine.
func (e *Engine) Schemas() map[string]SchemaEntry {
	return e.schemas.entries(e)
}
