package registry

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/vk/dpctl/internal/dag"
	"github.com/vk/dpctl/internal/datapackage"
	"github.com/vk/dpctl/internal/schema"
)

// Validate checks the structural invariants of a signature and returns every
// violation wrapped in ErrSchemaInvalid. Rule types and target kinds are not
// checked here: unknown ones are reported when a rule is evaluated.
func Validate(sig *schema.Signature, requireAcyclic bool) error {
	var result *multierror.Error

	decls := make(map[string]*schema.Declaration, len(sig.Variables))
	owners := make(map[string]string)
	for i, d := range sig.Variables {
		if d.Name == "" {
			result = multierror.Append(result, fmt.Errorf("variable #%d has no name", i))
			continue
		}
		if _, dup := decls[d.Name]; dup {
			result = multierror.Append(result, fmt.Errorf("variable %q is declared twice", d.Name))
			continue
		}
		decls[d.Name] = d

		if !d.IsResource() {
			if err := d.Conforms(d.DefaultValue()); err != nil {
				result = multierror.Append(result, fmt.Errorf("default: %w", err))
			}
			continue
		}
		def, err := d.BindingDefault()
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if err := datapackage.ValidateName("resource", def.Resource); err != nil {
			result = multierror.Append(result, fmt.Errorf("variable %q: %w", d.Name, err))
		}
		if owner, taken := owners[def.Resource]; taken {
			result = multierror.Append(result, fmt.Errorf("resource %q is bound by both %q and %q", def.Resource, owner, d.Name))
		}
		owners[def.Resource] = d.Name
	}

	sources := make(map[string]bool)
	for i, rule := range sig.Relationships {
		src, ok := decls[rule.Source]
		if !ok {
			result = multierror.Append(result, fmt.Errorf("relationship #%d: source %q is not declared", i, rule.Source))
			continue
		}
		if sources[rule.Source] {
			result = multierror.Append(result, fmt.Errorf("relationship #%d: variable %q is already the source of another relationship", i, rule.Source))
		}
		sources[rule.Source] = true

		if rule.Type == schema.RuleValue && src.IsResource() {
			result = multierror.Append(result, fmt.Errorf("relationship #%d: value rule source %q must be a scalar variable", i, rule.Source))
		}
		for j, m := range rule.Mappings {
			if rule.Type == schema.RuleValue && !src.IsResource() {
				for _, v := range m.Values {
					if err := src.Conforms(v); err != nil {
						result = multierror.Append(result, fmt.Errorf("relationship #%d mapping #%d trigger: %w", i, j, err))
					}
				}
			}
			for _, t := range m.Targets {
				result = multierror.Append(result, validateTarget(decls, i, j, t)...)
			}
		}
	}

	if requireAcyclic {
		if err := RelationshipGraph(sig).DetectCycles(); err != nil {
			result = multierror.Append(result, fmt.Errorf("relationships: %w", err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: algorithm %q: %w", ErrSchemaInvalid, sig.Name, err)
	}
	return nil
}

func validateTarget(decls map[string]*schema.Declaration, rule, mapping int, t schema.Target) []error {
	d, ok := decls[t.Name]
	if !ok {
		return []error{fmt.Errorf("relationship #%d mapping #%d: target %q is not declared", rule, mapping, t.Name)}
	}
	switch t.Kind {
	case schema.TargetValue:
		if d.IsResource() {
			return []error{fmt.Errorf("relationship #%d mapping #%d: value target %q is resource-bound", rule, mapping, t.Name)}
		}
		if t.HasValue() {
			if err := d.Conforms(t.Value); err != nil {
				return []error{fmt.Errorf("relationship #%d mapping #%d value: %w", rule, mapping, err)}
			}
		}
	case schema.TargetResource:
		if !d.IsResource() {
			return []error{fmt.Errorf("relationship #%d mapping #%d: resource target %q is not resource-bound", rule, mapping, t.Name)}
		}
	}
	return nil
}

// RelationshipGraph returns the graph with an edge from every rule source to
// each variable whose value it sets. Targets that only toggle disabled or
// overwrite resource rows never re-trigger a rule and add no edge.
func RelationshipGraph(sig *schema.Signature) *dag.Graph {
	g := dag.New()
	for _, rule := range sig.Relationships {
		g.AddNode(rule.Source)
		for _, m := range rule.Mappings {
			for _, t := range m.Targets {
				if t.Kind != schema.TargetValue || !t.HasValue() {
					continue
				}
				g.AddNode(t.Name)
				// Both ends were just added.
				_ = g.AddEdge(rule.Source, t.Name)
			}
		}
	}
	return g
}
