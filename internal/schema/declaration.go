// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Type is the declared type of a variable.
type Type string

const (
	TypeString     Type = "string"
	TypeBoolean    Type = "boolean"
	TypeNumber     Type = "number"
	TypeResource   Type = "resource"
	TypeParameters Type = "parameters"
)

// Resource profiles.
const (
	ProfileTabular   = "tabular-data-resource"
	ProfileParameter = "parameter-tabular-data-resource"
)

// Record is one row of a tabular resource.
type Record = map[string]any

// Field describes one column of a tabular schema.
type Field struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// TableSchema is the field list of a tabular resource.
type TableSchema struct {
	Fields []Field `json:"fields"`
}

// Field returns the field with the given name.
func (s *TableSchema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// IsEmpty reports whether the schema declares no fields.
func (s *TableSchema) IsEmpty() bool {
	return s == nil || len(s.Fields) == 0
}

// Declaration is a single variable of a signature.
type Declaration struct {
	Name        string            `json:"name"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Type        Type              `json:"type"`
	Profile     string            `json:"profile,omitempty"`
	Nullable    bool              `json:"nullable,omitempty"`
	Enum        []json.RawMessage `json:"enum,omitempty"`
	Default     json.RawMessage   `json:"default,omitempty"`
	Schema      *TableSchema      `json:"schema,omitempty"`
}

// ResourceDefault is the binding descriptor used as the default of resource
// and parameter variables.
type ResourceDefault struct {
	Resource string   `json:"resource"`
	Data     []Record `json:"data"`
}

// IsResource reports whether the variable is bound to a resource document
// instead of holding a scalar value.
func (d *Declaration) IsResource() bool {
	return d.Type == TypeResource || d.Type == TypeParameters
}

// ResourceProfile returns the profile of the resource backing the variable.
func (d *Declaration) ResourceProfile() string {
	if d.Profile != "" {
		return d.Profile
	}
	if d.Type == TypeParameters {
		return ProfileParameter
	}
	return ProfileTabular
}

// CtyType maps a scalar declaration to its cty type.
func (d *Declaration) CtyType() (cty.Type, error) {
	switch d.Type {
	case TypeString:
		return cty.String, nil
	case TypeBoolean:
		return cty.Bool, nil
	case TypeNumber:
		return cty.Number, nil
	case TypeResource, TypeParameters:
		return cty.NilType, fmt.Errorf("%w: variable %q is %s-typed", ErrWrongCommandForProfile, d.Name, d.Type)
	default:
		return cty.NilType, fmt.Errorf("%w: variable %q has unknown type %q", ErrTypeMismatch, d.Name, d.Type)
	}
}

// DefaultValue returns the raw default of a scalar variable, "null" when the
// declaration has none.
func (d *Declaration) DefaultValue() json.RawMessage {
	if len(d.Default) == 0 {
		return json.RawMessage("null")
	}
	return d.Default
}

// BindingDefault decodes the default of a resource variable. A missing
// descriptor or resource name falls back to the variable name.
func (d *Declaration) BindingDefault() (ResourceDefault, error) {
	def := ResourceDefault{Resource: d.Name, Data: []Record{}}
	if !IsNull(d.Default) {
		if err := json.Unmarshal(d.Default, &def); err != nil {
			return ResourceDefault{}, fmt.Errorf("variable %q: invalid resource default: %w", d.Name, err)
		}
	}
	if def.Resource == "" {
		def.Resource = d.Name
	}
	if def.Data == nil {
		def.Data = []Record{}
	}
	return def, nil
}
