// Package idgen produces UUIDs for request correlation.
package idgen

import (
	"github.com/google/uuid"
)

// Generator generates unique identifiers. Implementations must be safe for
// concurrent use; one Generator serves every request.
type Generator interface {
	Generate() (uuid.UUID, error)
}

// Func adapts a plain function to Generator.
type Func func() (uuid.UUID, error)

func (f Func) Generate() (uuid.UUID, error) { return f() }

// Random returns a Generator of UUID v4 values.
func Random() Generator {
	return Func(uuid.NewRandom)
}

// TimeOrdered returns a Generator of UUID v7 values, which keep request ids
// sortable in log output. When v7 generation fails it falls back to v4 so a
// request is never left without an id.
func TimeOrdered() Generator {
	return timeOrdered{fallback: Random()}
}

type timeOrdered struct {
	fallback Generator
}

func (g timeOrdered) Generate() (uuid.UUID, error) {
	if id, err := uuid.NewV7(); err == nil {
		return id, nil
	}
	return g.fallback.Generate()
}

// String generates one id from gen and returns its canonical form, or "" on failure.
func String(gen Generator) string {
	id, err := gen.Generate()
	if err != nil {
		return ""
	}
	return id.String()
}
