package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/vk/dpctl/internal/ctxlog"
	"github.com/vk/dpctl/internal/datapackage"
	"github.com/vk/dpctl/internal/fsutil"
	"github.com/vk/dpctl/internal/schema"
)

// LoadSignature returns the validated signature of an algorithm.
func (r *Registry) LoadSignature(ctx context.Context, algorithm string) (*schema.Signature, error) {
	if sig, ok := r.cache[algorithm]; ok {
		return sig, nil
	}
	logger := ctxlog.FromContext(ctx)

	if err := datapackage.ValidateName("algorithm", algorithm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaNotFound, err)
	}
	path := datapackage.AlgorithmPath(algorithm)
	exists, err := afero.Exists(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("registry: stat %s: %w", path, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q (%s)", ErrSchemaNotFound, algorithm, path)
	}

	var sig schema.Signature
	if _, err := datapackage.ReadJSON(r.fs, path, &sig); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSchemaInvalid, algorithm, err)
	}
	if sig.Name == "" {
		sig.Name = algorithm
	}
	if err := Validate(&sig, r.acyclic); err != nil {
		return nil, err
	}

	logger.Debug("Signature loaded.", "algorithm", algorithm, "variables", len(sig.Variables), "relationships", len(sig.Relationships))
	r.cache[algorithm] = &sig
	return &sig, nil
}

// List returns the names of all algorithms in the datapackage, sorted.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	paths, err := fsutil.FindFilesByExtension(r.fs, datapackage.AlgorithmsDir, ".json")
	if err != nil {
		return nil, fmt.Errorf("registry: list algorithms: %w", err)
	}
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		if filepath.Dir(p) != datapackage.AlgorithmsDir {
			continue
		}
		names = append(names, strings.TrimSuffix(filepath.Base(p), ".json"))
	}
	sort.Strings(names)
	ctxlog.FromContext(ctx).Debug("Algorithms listed.", "count", len(names))
	return names, nil
}
