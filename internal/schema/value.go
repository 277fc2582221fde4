// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// IsNull reports whether a raw JSON value is absent or the null literal.
func IsNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Decode converts a raw JSON value into a value of type t. The JSON kind must
// match t exactly; null yields cty.NullVal(t).
func Decode(t cty.Type, raw json.RawMessage) (cty.Value, error) {
	if IsNull(raw) {
		return cty.NullVal(t), nil
	}
	implied, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	if !implied.Equals(t) {
		return cty.NilVal, fmt.Errorf("%w: got %s, want %s", ErrTypeMismatch, implied.FriendlyName(), t.FriendlyName())
	}
	return ctyjson.Unmarshal(raw, t)
}

// Encode renders a value as raw JSON.
func Encode(v cty.Value) (json.RawMessage, error) {
	if v.IsNull() {
		return json.RawMessage("null"), nil
	}
	return ctyjson.Marshal(v, v.Type())
}

// ToGo converts a value to the plain Go form used inside resource rows.
func ToGo(v cty.Value) (any, error) {
	raw, err := Encode(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SameValue compares two values structurally. Nulls are equal only to nulls.
func SameValue(a, b cty.Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if !a.Type().Equals(b.Type()) {
		return false
	}
	return a.Equals(b).True()
}

// ParseRaw parses a command-line value as an HCL literal expression of type
// t: 0.1, true, null, "quoted". For string variables anything that is not a
// quoted string or null is taken literally, so bare words work.
func ParseRaw(t cty.Type, raw string) (cty.Value, error) {
	val, ok := parseLiteral(raw)
	if ok && val.IsNull() {
		return cty.NullVal(t), nil
	}
	if t.Equals(cty.String) {
		if ok && val.Type().Equals(cty.String) {
			return val, nil
		}
		return cty.StringVal(raw), nil
	}
	if !ok {
		return cty.NilVal, fmt.Errorf("%w: %q is not a %s literal", ErrTypeMismatch, raw, t.FriendlyName())
	}
	if !val.Type().Equals(t) {
		return cty.NilVal, fmt.Errorf("%w: %q is %s, want %s", ErrTypeMismatch, raw, val.Type().FriendlyName(), t.FriendlyName())
	}
	return val, nil
}

func parseLiteral(raw string) (cty.Value, bool) {
	if strings.TrimSpace(raw) == "" {
		return cty.NilVal, false
	}
	expr, diags := hclsyntax.ParseExpression([]byte(raw), "value", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, false
	}
	if !isLiteral(expr) {
		return cty.NilVal, false
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() || !val.IsWhollyKnown() {
		return cty.NilVal, false
	}
	if !val.IsNull() && !val.Type().IsPrimitiveType() {
		return cty.NilVal, false
	}
	return val, true
}

// isLiteral accepts literal values, quoted strings without interpolation
// and negated number literals. Operators, conditionals and function calls are
// not values.
func isLiteral(expr hclsyntax.Expression) bool {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return true
	case *hclsyntax.TemplateExpr:
		return len(e.Parts) == 0 || e.IsStringLiteral()
	case *hclsyntax.UnaryOpExpr:
		_, ok := e.Val.(*hclsyntax.LiteralValueExpr)
		return ok && e.Op == hclsyntax.OpNegate
	default:
		return false
	}
}

// Check validates a typed value against the declaration's enum and
// nullability. Enum membership is only checked for non-null values.
func (d *Declaration) Check(v cty.Value) error {
	if v.IsNull() {
		if !d.Nullable {
			return fmt.Errorf("%w: variable %q", ErrNullNotAllowed, d.Name)
		}
		return nil
	}
	return d.checkEnum(v)
}

func (d *Declaration) checkEnum(v cty.Value) error {
	if len(d.Enum) == 0 {
		return nil
	}
	for _, raw := range d.Enum {
		member, err := Decode(v.Type(), raw)
		if err != nil {
			continue
		}
		if SameValue(member, v) {
			return nil
		}
	}
	return fmt.Errorf("%w: variable %q does not allow %s", ErrEnumViolation, d.Name, friendly(v))
}

// Conforms reports whether a raw payload (default, trigger value or target
// value) has the declared type and, when non-null, belongs to the enum.
func (d *Declaration) Conforms(raw json.RawMessage) error {
	t, err := d.CtyType()
	if err != nil {
		return err
	}
	v, err := Decode(t, raw)
	if err != nil {
		return fmt.Errorf("variable %q: %w", d.Name, err)
	}
	if v.IsNull() {
		return nil
	}
	return d.checkEnum(v)
}

func friendly(v cty.Value) string {
	raw, err := Encode(v)
	if err != nil {
		return v.GoString()
	}
	return string(raw)
}

// ParseAny parses raw as a literal of whatever primitive type it spells,
// falling back to the raw text as a string.
func ParseAny(raw string) cty.Value {
	val, ok := parseLiteral(raw)
	if !ok {
		return cty.StringVal(raw)
	}
	return val
}

// ImpliedType returns the cty type of a plain Go value taken from a
// resource row: string, bool or float64.
func ImpliedType(v any) (cty.Type, bool) {
	switch v.(type) {
	case string:
		return cty.String, true
	case bool:
		return cty.Bool, true
	case float64, int, int64:
		return cty.Number, true
	default:
		return cty.NilType, false
	}
}
