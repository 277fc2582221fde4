package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/dpctl/internal/ctxlog"
	"github.com/vk/dpctl/internal/resource"
	"github.com/vk/dpctl/internal/runconfig"
	"github.com/vk/dpctl/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

var (
	ErrUnsupportedRuleType   = errors.New("unsupported rule type")
	ErrUnsupportedTargetKind = errors.New("unsupported target kind")
)

// Loader gives the engine read access to resources bound to run variables.
type Loader interface {
	LoadByVariable(ctx context.Context, rc *runconfig.RunConfiguration, variable string) (*resource.Resource, error)
}

// Outcome is the result of evaluating the rule of one trigger variable.
type Outcome struct {
	// Fired is false when the trigger has no rule or no mapping matched.
	Fired bool
	// Run is the mutated copy of the run configuration. It is the input
	// configuration itself when the rule did not fire.
	Run *runconfig.RunConfiguration
	// Writes are the resources whose data was overwritten, in target order.
	Writes []*resource.Resource
	// Changed lists variables whose value differs after the rule.
	Changed []string
}

// Apply evaluates the rule whose source is trigger against rc.
func Apply(ctx context.Context, sig *schema.Signature, trigger string, rc *runconfig.RunConfiguration, loader Loader) (*Outcome, error) {
	logger := ctxlog.FromContext(ctx).With("trigger", trigger)

	rule := sig.RuleFor(trigger)
	if rule == nil {
		return &Outcome{Run: rc}, nil
	}
	if rule.Type != schema.RuleValue {
		return nil, fmt.Errorf("%w: %q on source %q", ErrUnsupportedRuleType, rule.Type, trigger)
	}

	current, err := currentValue(sig, rc, trigger)
	if err != nil {
		return nil, err
	}
	mapping := match(rule, current)
	if mapping == nil {
		logger.Debug("No mapping matched.")
		return &Outcome{Run: rc}, nil
	}

	a := &applier{
		sig:    sig,
		run:    rc.Clone(),
		loader: loader,
		loaded: make(map[string]*resource.Resource),
	}
	for _, target := range mapping.Targets {
		if err := a.apply(ctx, target); err != nil {
			return nil, fmt.Errorf("relationship of %q: %w", trigger, err)
		}
	}

	logger.Debug("Rule applied.", "targets", len(mapping.Targets), "writes", len(a.writes), "changed", a.changed)
	return &Outcome{Fired: true, Run: a.run, Writes: a.writes, Changed: a.changed}, nil
}

func currentValue(sig *schema.Signature, rc *runconfig.RunConfiguration, name string) (cty.Value, error) {
	decl, ok := sig.Variable(name)
	if !ok {
		return cty.NilVal, fmt.Errorf("%w: %q is not declared by %q", runconfig.ErrVariableNotFound, name, sig.Name)
	}
	t, err := decl.CtyType()
	if err != nil {
		return cty.NilVal, err
	}
	state, err := rc.Variable(name)
	if err != nil {
		return cty.NilVal, err
	}
	v, err := schema.Decode(t, state.Value)
	if err != nil {
		return cty.NilVal, fmt.Errorf("variable %q: %w", name, err)
	}
	return v, nil
}

// match returns the first mapping listing the value, in declaration order.
func match(rule *schema.Rule, v cty.Value) *schema.Mapping {
	for i := range rule.Mappings {
		for _, raw := range rule.Mappings[i].Values {
			trigger, err := schema.Decode(v.Type(), raw)
			if err != nil {
				continue
			}
			if schema.SameValue(trigger, v) {
				return &rule.Mappings[i]
			}
		}
	}
	return nil
}

type applier struct {
	sig     *schema.Signature
	run     *runconfig.RunConfiguration
	loader  Loader
	loaded  map[string]*resource.Resource
	writes  []*resource.Resource
	changed []string
}

func (a *applier) apply(ctx context.Context, target schema.Target) error {
	state, err := a.run.Variable(target.Name)
	if err != nil {
		return err
	}
	if target.Disabled != nil {
		state.Disabled = *target.Disabled
	}

	switch target.Kind {
	case schema.TargetValue:
		if !target.HasValue() {
			return nil
		}
		return a.setValue(state, target)
	case schema.TargetResource:
		if !target.HasData() {
			return nil
		}
		return a.overwrite(ctx, target)
	default:
		return fmt.Errorf("%w: %q on target %q", ErrUnsupportedTargetKind, target.Kind, target.Name)
	}
}

func (a *applier) setValue(state *runconfig.VariableState, target schema.Target) error {
	decl, ok := a.sig.Variable(target.Name)
	if !ok {
		return fmt.Errorf("%w: %q", runconfig.ErrVariableNotFound, target.Name)
	}
	t, err := decl.CtyType()
	if err != nil {
		return err
	}
	next, err := schema.Decode(t, target.Value)
	if err != nil {
		return fmt.Errorf("target %q: %w", target.Name, err)
	}
	prev, err := schema.Decode(t, state.Value)
	if err != nil {
		return fmt.Errorf("variable %q: %w", target.Name, err)
	}
	if schema.SameValue(prev, next) {
		return nil
	}
	encoded, err := schema.Encode(next)
	if err != nil {
		return err
	}
	state.Value = encoded
	a.changed = append(a.changed, target.Name)
	return nil
}

func (a *applier) overwrite(ctx context.Context, target schema.Target) error {
	res, ok := a.loaded[target.Name]
	if !ok {
		loaded, err := a.loader.LoadByVariable(ctx, a.run, target.Name)
		if err != nil {
			return err
		}
		res = loaded
		a.loaded[target.Name] = res
		a.writes = append(a.writes, res)
	}
	res.Data = resource.CloneRecords(target.Data)
	return nil
}
