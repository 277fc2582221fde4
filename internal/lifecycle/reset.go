package lifecycle

import (
	"context"
	"fmt"

	"github.com/vk/dpctl/internal/ctxlog"
	"github.com/vk/dpctl/internal/datapackage"
	"github.com/vk/dpctl/internal/fsutil"
)

// Reset restores every resource of the run to its default, in declaration
// order, and removes rendered view artifacts. Variables keep their values.
// An unknown resource profile stops the reset; resources reset before it
// stay reset.
func (m *Manager) Reset(ctx context.Context, run string) error {
	ctx = ctxlog.With(ctx, "run", run)
	logger := ctxlog.FromContext(ctx)

	rc, err := m.runs.Load(ctx, run)
	if err != nil {
		return err
	}

	changed := 0
	for _, state := range rc.Data {
		if state.Resource == "" {
			continue
		}
		res, err := m.resources.LoadByVariable(ctx, rc, state.Name)
		if err != nil {
			return err
		}
		ok, err := m.resources.ResetToDefault(ctx, run, res)
		if err != nil {
			return err
		}
		if ok {
			changed++
		}
	}

	artifacts, err := fsutil.FindFilesByExtension(m.dp.Fs, datapackage.RunViewsDir(run), datapackage.ViewArtifactExt)
	if err != nil {
		return fmt.Errorf("lifecycle: find view artifacts: %w", err)
	}
	for _, path := range artifacts {
		if err := m.dp.Fs.Remove(path); err != nil {
			return fmt.Errorf("lifecycle: remove %s: %w", path, err)
		}
	}

	logger.Info("Run reset.", "resources_reset", changed, "views_removed", len(artifacts))
	return nil
}
