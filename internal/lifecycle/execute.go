package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/vk/dpctl/internal/ctxlog"
	"github.com/vk/dpctl/internal/datapackage"
	"github.com/vk/dpctl/internal/executor"
)

// ViewDescriptor is the content of views/<view>.json.
type ViewDescriptor struct {
	Name      string `json:"name,omitempty"`
	Title     string `json:"title,omitempty"`
	Container string `json:"container"`
}

func (m *Manager) volumes() []executor.Volume {
	return []executor.Volume{{Host: m.dp.Root, Container: m.mountPath}}
}

// Run executes the run's algorithm container. container overrides the one
// recorded in the run configuration when non-empty.
func (m *Manager) Run(ctx context.Context, run, container string) (executor.Result, error) {
	ctx = ctxlog.With(ctx, "run", run)
	logger := ctxlog.FromContext(ctx)

	rc, err := m.runs.Load(ctx, run)
	if err != nil {
		return executor.Result{}, err
	}
	if container == "" {
		container = rc.Container
	}
	if container == "" {
		return executor.Result{}, fmt.Errorf("%w: run %q records no container and none was given", ErrNoContainer, run)
	}

	logger.Info("Executing algorithm.", "algorithm", rc.Algorithm, "container", container)
	result, err := m.dp.Executor.Execute(ctx, executor.Spec{
		Image:   container,
		Volumes: m.volumes(),
		Env: map[string]string{
			"ALGORITHM": rc.Algorithm,
			"CONTAINER": container,
			"ARGUMENTS": run,
		},
	})
	if err != nil {
		return result, err
	}
	logger.Info("Algorithm executed.", "algorithm", rc.Algorithm)
	return result, nil
}

// View renders a view of the run and returns the host path of the artifact.
// container overrides the one in the view descriptor when non-empty.
func (m *Manager) View(ctx context.Context, run, view, container string) (string, error) {
	ctx = ctxlog.With(ctx, "run", run, "view", view)
	logger := ctxlog.FromContext(ctx)

	if _, err := m.runs.Load(ctx, run); err != nil {
		return "", err
	}
	if err := datapackage.ValidateName("view", view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrViewNotFound, err)
	}
	if container == "" {
		desc, err := m.viewDescriptor(view)
		if err != nil {
			return "", err
		}
		container = desc.Container
	}
	if container == "" {
		return "", fmt.Errorf("%w: view %q declares no container", ErrNoContainer, view)
	}

	logger.Info("Generating view.", "container", container)
	if _, err := m.dp.Executor.Execute(ctx, executor.Spec{
		Image:   container,
		Volumes: m.volumes(),
		Env: map[string]string{
			"VIEW":      view,
			"ARGUMENTS": run,
		},
	}); err != nil {
		return "", err
	}

	artifact := datapackage.ViewArtifactPath(run, view)
	exists, err := afero.Exists(m.dp.Fs, artifact)
	if err != nil {
		return "", fmt.Errorf("lifecycle: stat %s: %w", artifact, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: view %q did not produce %s", ErrViewNotRendered, view, artifact)
	}
	logger.Info("View generated.", "artifact", artifact)
	return filepath.Join(m.dp.Root, artifact), nil
}

func (m *Manager) viewDescriptor(view string) (*ViewDescriptor, error) {
	path := datapackage.ViewPath(view)
	exists, err := afero.Exists(m.dp.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: stat %s: %w", path, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q (%s)", ErrViewNotFound, view, path)
	}
	var desc ViewDescriptor
	if _, err := datapackage.ReadJSON(m.dp.Fs, path, &desc); err != nil {
		return nil, fmt.Errorf("lifecycle: %w", err)
	}
	return &desc, nil
}
