package datapackage

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/spf13/afero"
	"github.com/vk/dpctl/internal/executor"
)

// DescriptorFile marks the root of a datapackage.
const DescriptorFile = "datapackage.json"

// ErrNotDatapackage is returned by Open when the root has no descriptor.
var ErrNotDatapackage = errors.New("not a datapackage")

// Context is the explicit replacement for "the current directory is the
// datapackage". Fs is rooted at the datapackage so every path handed to it
// is relative; Root is the absolute host path used for container volumes.
type Context struct {
	Root     string
	Fs       afero.Fs
	Executor executor.Executor
}

// Open verifies that fsys is rooted at a datapackage and returns its Context.
func Open(fsys afero.Fs, root string, exec executor.Executor) (*Context, error) {
	ok, err := afero.Exists(fsys, DescriptorFile)
	if err != nil {
		return nil, fmt.Errorf("datapackage: stat %s: %w", DescriptorFile, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s", ErrNotDatapackage, root, DescriptorFile)
	}
	return &Context{Root: root, Fs: fsys, Executor: exec}, nil
}

// OpenDir opens the datapackage at an absolute host directory.
func OpenDir(root string, exec executor.Executor) (*Context, error) {
	return Open(afero.NewBasePathFs(afero.NewOsFs(), root), root, exec)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateName rejects names that cannot be used as a single path element.
func ValidateName(kind, name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}
