package lifecycle

import (
	"context"

	"github.com/vk/dpctl/internal/resource"
	"github.com/vk/dpctl/internal/runconfig"
	"github.com/vk/dpctl/internal/schema"
)

// Show returns a run configuration together with its signature.
func (m *Manager) Show(ctx context.Context, run string) (*runconfig.RunConfiguration, *schema.Signature, error) {
	rc, err := m.runs.Load(ctx, run)
	if err != nil {
		return nil, nil, err
	}
	sig, err := m.registry.LoadSignature(ctx, rc.Algorithm)
	if err != nil {
		return nil, nil, err
	}
	return rc, sig, nil
}

// Table returns the resource bound to a variable of the run.
func (m *Manager) Table(ctx context.Context, run, variable string) (*resource.Resource, error) {
	rc, err := m.runs.Load(ctx, run)
	if err != nil {
		return nil, err
	}
	return m.resources.LoadByVariable(ctx, rc, variable)
}

// LastUpdated returns the marker of the run's latest resource write, or nil
// when the run has no resources.
func (m *Manager) LastUpdated(ctx context.Context, run string) (*resource.LastUpdated, error) {
	if _, err := m.runs.Load(ctx, run); err != nil {
		return nil, err
	}
	return m.resources.LastUpdated(run)
}

// Algorithms lists the algorithms of the datapackage.
func (m *Manager) Algorithms(ctx context.Context) ([]string, error) {
	return m.registry.List(ctx)
}
