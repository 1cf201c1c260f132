package scanner

import (
	"fmt"

	"recipeimport/internal/domain"
)

// Format captures a single export-layout strategy (Recipe Keeper today,
// other recipe managers later).
type Format interface {
	Name() string
	Parse(document string) []domain.ParsedRecipe
}

// Registry keeps a mapping from format names to their implementations.
type Registry struct {
	formats map[string]Format
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: map[string]Format{}}
}

// Register adds or replaces a format implementation.
func (r *Registry) Register(format Format) {
	if r.formats == nil {
		r.formats = map[string]Format{}
	}
	r.formats[format.Name()] = format
}

// Resolve returns a format by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Format, error) {
	if format, ok := r.formats[name]; ok {
		return format, nil
	}
	return nil, fmt.Errorf("export format %s is not registered", name)
}
