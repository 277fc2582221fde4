package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vk/dpctl/internal/config"
)

// Options holds everything an App needs that does not come from the
// datapackage itself.
type Options struct {
	// Root is the datapackage directory. The working directory when empty.
	Root string
	// Overrides are command-line settings layered over file and environment.
	Overrides config.Config
	// Lookup reads environment variables. os.LookupEnv when nil.
	Lookup config.LookupFunc

	Out io.Writer
	Err io.Writer
}

func (o *Options) normalize() error {
	root := o.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve datapackage root %q: %w", root, err)
	}
	o.Root = abs

	if o.Lookup == nil {
		o.Lookup = config.OSLookup
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	return nil
}
