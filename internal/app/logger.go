package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/afero"
	"github.com/vk/dpctl/internal/config"
)

func parseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger. When cfg.File is set, records are also written as
// JSON to that file, resolved inside fsys.
func newLogger(cfg config.LogConfig, outW io.Writer, fsys afero.Fs) (*slog.Logger, io.Closer, error) {
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var console slog.Handler
	if cfg.Format == "json" {
		console = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		console = slog.NewTextHandler(outW, handlerOpts)
	}
	if cfg.File == "" {
		return slog.New(console), nopCloser{}, nil
	}

	if err := fsys.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := fsys.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	handler := slogmulti.Fanout(console, slog.NewJSONHandler(f, handlerOpts))
	return slog.New(handler), f, nil
}
