package runconfig

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/vk/dpctl/internal/ctxlog"
	"github.com/vk/dpctl/internal/datapackage"
)

// Store reads and writes run configurations of one datapackage.
type Store struct {
	fs afero.Fs
}

// NewStore creates a Store on a datapackage-rooted filesystem.
func NewStore(fsys afero.Fs) *Store {
	return &Store{fs: fsys}
}

// Exists reports whether any artifact of the run exists.
func (s *Store) Exists(run string) (bool, error) {
	return afero.Exists(s.fs, datapackage.RunDir(run))
}

// Load reads a run configuration.
func (s *Store) Load(ctx context.Context, run string) (*RunConfiguration, error) {
	if err := datapackage.ValidateName("run", run); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRunNotFound, err)
	}
	path := datapackage.RunConfigPath(run)
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("runconfig: stat %s: %w", path, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, run)
	}

	var rc RunConfiguration
	if _, err := datapackage.ReadJSON(s.fs, path, &rc); err != nil {
		return nil, fmt.Errorf("runconfig: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Run configuration loaded.", "run", run, "variables", len(rc.Data))
	return &rc, nil
}

// Save writes a run configuration.
func (s *Store) Save(ctx context.Context, rc *RunConfiguration) error {
	if err := datapackage.ValidateName("run", rc.Name); err != nil {
		return err
	}
	if _, err := datapackage.WriteJSON(s.fs, datapackage.RunConfigPath(rc.Name), rc); err != nil {
		return fmt.Errorf("runconfig: save %q: %w", rc.Name, err)
	}
	ctxlog.FromContext(ctx).Debug("Run configuration saved.", "run", rc.Name)
	return nil
}

// Create saves a new run configuration, failing if the run already exists.
func (s *Store) Create(ctx context.Context, rc *RunConfiguration) error {
	if err := datapackage.ValidateName("run", rc.Name); err != nil {
		return err
	}
	exists, err := s.Exists(rc.Name)
	if err != nil {
		return fmt.Errorf("runconfig: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %q", ErrRunAlreadyExists, rc.Name)
	}
	return s.Save(ctx, rc)
}
