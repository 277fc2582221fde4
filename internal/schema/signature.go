// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import "encoding/json"

// Rule types.
const RuleValue = "value"

// Target kinds.
const (
	TargetValue    = "value"
	TargetResource = "resource"
)

// Signature is the immutable declaration of an algorithm.
type Signature struct {
	Name          string         `json:"name"`
	Title         string         `json:"title,omitempty"`
	Container     string         `json:"container"`
	Variables     []*Declaration `json:"signature"`
	Relationships []*Rule        `json:"relationships,omitempty"`
}

// Rule maps values of its source variable to side effects on other variables.
type Rule struct {
	Source   string    `json:"source"`
	Type     string    `json:"type"`
	Mappings []Mapping `json:"mappings"`
}

// Mapping is one guarded branch of a rule: when the source value is one of
// Values, Targets are applied in order.
type Mapping struct {
	Values  []json.RawMessage `json:"values"`
	Targets []Target          `json:"targets"`
}

// Target is a side effect of a rule. A present Value (JSON null included)
// sets the variable; Data overwrites a bound resource's rows.
type Target struct {
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Value    json.RawMessage `json:"value,omitempty"`
	Data     []Record        `json:"data,omitempty"`
	Disabled *bool           `json:"disabled,omitempty"`
}

// HasValue reports whether the target carries a value payload.
func (t *Target) HasValue() bool {
	return t.Value != nil
}

// HasData reports whether the target carries a data payload. An empty
// "data": [] is a payload; a missing or null key is not.
func (t *Target) HasData() bool {
	return t.Data != nil
}

// Variable returns the declaration with the given name.
func (s *Signature) Variable(name string) (*Declaration, bool) {
	for _, d := range s.Variables {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// RuleFor returns the rule whose source is the given variable, nil if none.
func (s *Signature) RuleFor(source string) *Rule {
	for _, r := range s.Relationships {
		if r.Source == source {
			return r
		}
	}
	return nil
}
