package lifecycle

import (
	"context"

	"github.com/vk/dpctl/internal/config"
	"github.com/vk/dpctl/internal/ctxlog"
	"github.com/vk/dpctl/internal/engine"
	"github.com/vk/dpctl/internal/runconfig"
	"github.com/vk/dpctl/internal/schema"
)

// propagate evaluates the relationship of trigger and commits its outcome.
// In transitive mode the rules of variables changed by a committed outcome
// are evaluated next, breadth first, each variable at most once.
func (m *Manager) propagate(ctx context.Context, sig *schema.Signature, trigger string, rc *runconfig.RunConfiguration) (*runconfig.RunConfiguration, error) {
	logger := ctxlog.FromContext(ctx)

	queue := []string{trigger}
	visited := make(map[string]bool)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if visited[name] {
			continue
		}
		visited[name] = true

		out, err := engine.Apply(ctx, sig, name, rc, m.resources)
		if err != nil {
			return rc, err
		}
		if !out.Fired {
			continue
		}
		if err := m.commit(ctx, out); err != nil {
			return rc, err
		}
		rc = out.Run
		logger.Debug("Relationship committed.", "source", name, "changed", out.Changed, "writes", len(out.Writes))

		if m.propagation == config.PropagationTransitive {
			queue = append(queue, out.Changed...)
		}
	}
	return rc, nil
}

// commit persists one rule outcome: resources first, then the run.
func (m *Manager) commit(ctx context.Context, out *engine.Outcome) error {
	for _, res := range out.Writes {
		if err := m.resources.Write(ctx, out.Run.Name, res); err != nil {
			return err
		}
	}
	return m.runs.Save(ctx, out.Run)
}
