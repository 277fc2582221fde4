package lifecycle

import (
	"context"
	"fmt"

	"github.com/vk/dpctl/internal/ctxlog"
	"github.com/vk/dpctl/internal/runconfig"
	"github.com/vk/dpctl/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// target resolves a run, its signature and one declared variable.
func (m *Manager) target(ctx context.Context, run, name string) (*runconfig.RunConfiguration, *schema.Signature, *schema.Declaration, error) {
	rc, err := m.runs.Load(ctx, run)
	if err != nil {
		return nil, nil, nil, err
	}
	sig, err := m.registry.LoadSignature(ctx, rc.Algorithm)
	if err != nil {
		return nil, nil, nil, err
	}
	decl, ok := sig.Variable(name)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %q is not declared by %q", runconfig.ErrVariableNotFound, name, sig.Name)
	}
	if _, err := rc.Variable(name); err != nil {
		return nil, nil, nil, err
	}
	return rc, sig, decl, nil
}

// SetVariable validates and sets a scalar variable from its command-line
// form, persists the run and propagates the variable's relationship. Nothing
// is written when validation fails.
func (m *Manager) SetVariable(ctx context.Context, run, name, raw string) (*runconfig.RunConfiguration, error) {
	ctx = ctxlog.With(ctx, "run", run, "variable", name)

	rc, sig, decl, err := m.target(ctx, run, name)
	if err != nil {
		return nil, err
	}
	if decl.IsResource() {
		return nil, fmt.Errorf("%w: %q is %s-typed, use load or set-param", schema.ErrWrongCommandForProfile, name, decl.Type)
	}
	t, err := decl.CtyType()
	if err != nil {
		return nil, err
	}
	v, err := schema.ParseRaw(t, raw)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	if err := decl.Check(v); err != nil {
		return nil, err
	}
	encoded, err := schema.Encode(v)
	if err != nil {
		return nil, err
	}

	state, _ := rc.Variable(name)
	state.Value = encoded
	if err := m.runs.Save(ctx, rc); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Info("Variable set.", "value", string(encoded))

	return m.propagate(ctx, sig, name, rc)
}

// SetParam sets the value column of one row of a parameter resource.
func (m *Manager) SetParam(ctx context.Context, run, variable, param, raw string) error {
	ctx = ctxlog.With(ctx, "run", run, "variable", variable, "parameter", param)

	rc, _, decl, err := m.target(ctx, run, variable)
	if err != nil {
		return err
	}
	if !decl.IsResource() {
		return fmt.Errorf("%w: %q is a scalar, use set-var", schema.ErrWrongCommandForProfile, variable)
	}
	res, err := m.resources.LoadByVariable(ctx, rc, variable)
	if err != nil {
		return err
	}
	if res.Profile != schema.ProfileParameter {
		return fmt.Errorf("%w: %q is a %s, use load", schema.ErrWrongCommandForProfile, variable, res.Profile)
	}

	row := -1
	for i, r := range res.Data {
		if name, _ := r["name"].(string); name == param {
			row = i
			break
		}
	}
	if row < 0 {
		return fmt.Errorf("%w: %q in %q", ErrParameterNotFound, param, variable)
	}

	v, err := parseParam(res.Data[row], raw)
	if err != nil {
		return fmt.Errorf("parameter %q: %w", param, err)
	}
	goValue, err := schema.ToGo(v)
	if err != nil {
		return err
	}
	res.Data[row]["value"] = goValue
	if err := m.resources.Write(ctx, run, res); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Parameter set.", "value", goValue)
	return nil
}

// parseParam parses a parameter value with the type named by the row's
// type column, or implied by its current value.
func parseParam(row map[string]any, raw string) (cty.Value, error) {
	if typeName, ok := row["type"].(string); ok {
		decl := &schema.Declaration{Type: schema.Type(typeName)}
		if t, err := decl.CtyType(); err == nil {
			return schema.ParseRaw(t, raw)
		}
	}
	if t, ok := schema.ImpliedType(row["value"]); ok {
		return schema.ParseRaw(t, raw)
	}
	return schema.ParseAny(raw), nil
}
