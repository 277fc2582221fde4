package registry

import (
	"errors"

	"github.com/spf13/afero"
	"github.com/vk/dpctl/internal/schema"
)

var (
	ErrSchemaNotFound = errors.New("signature not found")
	ErrSchemaInvalid  = errors.New("signature invalid")
)

// Registry is a read-only view over the signatures of one datapackage.
type Registry struct {
	fs      afero.Fs
	acyclic bool
	cache   map[string]*schema.Signature
}

// Option configures a Registry.
type Option func(*Registry)

// WithAcyclicRelationships makes the registry reject signatures whose
// relationship graph contains a cycle. Transitive propagation requires it.
func WithAcyclicRelationships() Option {
	return func(r *Registry) {
		r.acyclic = true
	}
}

// New creates a Registry reading from a datapackage-rooted filesystem.
func New(fsys afero.Fs, opts ...Option) *Registry {
	r := &Registry{
		fs:    fsys,
		cache: make(map[string]*schema.Signature),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
