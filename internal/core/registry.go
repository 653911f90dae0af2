package core

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds the template definitions available to a generator.
// It is built once and read-only afterwards, so it is safe to share.
type Registry struct {
	defs map[TemplateVariant]TemplateDefinition
}

// NewRegistry creates a registry from the given definitions.
// Returns an error if two definitions share a variant or a definition is
// malformed.
func NewRegistry(defs ...TemplateDefinition) (*Registry, error) {
	r := &Registry{defs: make(map[TemplateVariant]TemplateDefinition, len(defs))}

	for _, def := range defs {
		if _, exists := r.defs[def.Info.Variant]; exists {
			return nil, fmt.Errorf("template already registered: %s", def.Info.Variant)
		}
		if err := checkDefinition(def); err != nil {
			return nil, fmt.Errorf("template %s: %w", def.Info.Variant, err)
		}

		// Populate Fields from FieldSpecs if not set
		if len(def.Info.Fields) == 0 {
			def.Info.Fields = make([]string, len(def.Fields))
			for i, spec := range def.Fields {
				def.Info.Fields[i] = string(spec.Field)
			}
		}

		r.defs[def.Info.Variant] = def
	}

	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
// Use it only for statically known definitions.
func MustRegistry(defs ...TemplateDefinition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns a definition by variant. The lookup is case-insensitive so
// form values such as "valve" resolve.
func (r *Registry) Get(v TemplateVariant) (TemplateDefinition, bool) {
	if def, ok := r.defs[v]; ok {
		return def, true
	}
	for key, def := range r.defs {
		if strings.EqualFold(string(key), string(v)) {
			return def, true
		}
	}
	return TemplateDefinition{}, false
}

// All returns all definitions sorted by variant.
func (r *Registry) All() []TemplateDefinition {
	result := make([]TemplateDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Variant < result[j].Info.Variant
	})

	return result
}

// Infos returns display information for all definitions.
func (r *Registry) Infos() []TemplateInfo {
	defs := r.All()
	infos := make([]TemplateInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	return len(r.defs)
}

func checkDefinition(def TemplateDefinition) error {
	if def.Info.Variant == "" {
		return fmt.Errorf("missing variant")
	}
	if def.Info.SheetMatch == "" {
		return fmt.Errorf("missing template sheet match")
	}
	if def.KeyIndex() < 0 {
		return fmt.Errorf("key field %q is not declared", def.KeyField)
	}

	cells := make(map[string]SemanticField)
	for _, spec := range def.Fields {
		if len(spec.Variants) == 0 {
			return fmt.Errorf("field %q has no label variants", spec.Field)
		}
		if spec.Cell == "" {
			return fmt.Errorf("field %q has no destination cell", spec.Field)
		}
		if other, dup := cells[spec.Cell]; dup {
			return fmt.Errorf("fields %q and %q share cell %s", other, spec.Field, spec.Cell)
		}
		cells[spec.Cell] = spec.Field
	}
	for _, c := range def.Constants {
		if _, dup := cells[c.Cell]; dup {
			return fmt.Errorf("constant cell %s overlaps a field", c.Cell)
		}
	}
	return nil
}
