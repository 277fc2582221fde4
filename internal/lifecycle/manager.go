package lifecycle

import (
	"errors"

	"github.com/spf13/afero"
	"github.com/vk/dpctl/internal/config"
	"github.com/vk/dpctl/internal/datapackage"
	"github.com/vk/dpctl/internal/registry"
	"github.com/vk/dpctl/internal/resource"
	"github.com/vk/dpctl/internal/runconfig"
)

var (
	ErrParameterNotFound = errors.New("parameter not found")
	ErrViewNotFound      = errors.New("view not found")
	ErrNoContainer       = errors.New("no container")
	ErrViewNotRendered   = errors.New("view artifact missing")
)

// Manager runs lifecycle operations against one datapackage.
type Manager struct {
	dp          *datapackage.Context
	registry    *registry.Registry
	runs        *runconfig.Store
	resources   *resource.Store
	sources     afero.Fs
	propagation string
	mountPath   string
}

// Option configures a Manager.
type Option func(*Manager)

// WithPropagation selects config.PropagationOneHop or
// config.PropagationTransitive.
func WithPropagation(mode string) Option {
	return func(m *Manager) {
		m.propagation = mode
	}
}

// WithMountPath sets where the datapackage is mounted inside containers.
func WithMountPath(path string) Option {
	return func(m *Manager) {
		m.mountPath = path
	}
}

// WithSourceFs sets the filesystem ingested files are read from.
func WithSourceFs(fsys afero.Fs) Option {
	return func(m *Manager) {
		m.sources = fsys
	}
}

// New creates a Manager for a datapackage.
func New(dp *datapackage.Context, opts ...Option) *Manager {
	defaults := config.Default()
	m := &Manager{
		dp:          dp,
		sources:     afero.NewOsFs(),
		propagation: defaults.Propagation,
		mountPath:   defaults.Executor.MountPath,
	}
	for _, opt := range opts {
		opt(m)
	}

	var regOpts []registry.Option
	if m.propagation == config.PropagationTransitive {
		regOpts = append(regOpts, registry.WithAcyclicRelationships())
	}
	m.registry = registry.New(dp.Fs, regOpts...)
	m.runs = runconfig.NewStore(dp.Fs)
	m.resources = resource.NewStore(dp.Fs)
	return m
}
