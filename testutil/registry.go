package testutil

import (
	"time"

	"github.com/skosovsky/validy"
)

// NewTestEngine returns an Engine with a generous timeout and panic recovery enabled, with
// schemas registered under their map keys. It panics if a registration fails.
func NewTestEngine(schemas map[string]*validy.Schema, opts ...validy.Option) *validy.Engine {
	base := []validy.Option{
		validy.WithTimeout(30 * time.Second),
		validy.WithRecoverPanics(true),
	}
	eng := validy.New(append(base, opts...)...)
	for name, s := range schemas {
		eng.MustAddSchemaType(name, s)
	}
	return eng
}
