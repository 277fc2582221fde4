package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/vk/dpctl/internal/config"
	"github.com/vk/dpctl/internal/ctxlog"
	"github.com/vk/dpctl/internal/datapackage"
	"github.com/vk/dpctl/internal/executor"
	"github.com/vk/dpctl/internal/lifecycle"
)

// App encapsulates the dependencies of one invocation.
type App struct {
	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
	dp        *datapackage.Context
	manager   *lifecycle.Manager
}

// NewApp opens the datapackage described by opts and wires the manager.
func NewApp(opts Options) (*App, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	fsys := afero.NewBasePathFs(afero.NewOsFs(), opts.Root)

	cfg, err := config.Load(fsys, opts.Lookup)
	if err != nil {
		return nil, err
	}
	if err := cfg.Override(opts.Overrides); err != nil {
		return nil, err
	}

	exec := executor.NewDockerExecutor(cfg.Executor.DockerBin, opts.Out)
	dp, err := datapackage.Open(fsys, opts.Root, exec)
	if err != nil {
		return nil, err
	}

	logger, closer, err := newLogger(cfg.Log, opts.Err, fsys)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	logger.Debug("Logger configured successfully.", "level", cfg.Log.Level, "format", cfg.Log.Format, "file", cfg.Log.File)

	manager := lifecycle.New(dp,
		lifecycle.WithPropagation(cfg.Propagation),
		lifecycle.WithMountPath(cfg.Executor.MountPath),
	)
	logger.Debug("Datapackage opened.", "root", opts.Root, "propagation", cfg.Propagation)

	return &App{
		cfg:       cfg,
		logger:    logger,
		logCloser: closer,
		dp:        dp,
		manager:   manager,
	}, nil
}

// Context returns ctx carrying the app's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Manager returns the lifecycle manager of the datapackage.
func (a *App) Manager() *lifecycle.Manager {
	return a.manager
}

// Config returns the effective configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Close releases the log file, if any.
func (a *App) Close() error {
	return a.logCloser.Close()
}
