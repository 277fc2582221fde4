package resource

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/vk/dpctl/internal/ctxlog"
	"github.com/vk/dpctl/internal/datapackage"
	"github.com/vk/dpctl/internal/runconfig"
	"github.com/vk/dpctl/internal/schema"
)

// Store reads and writes the resources of a datapackage's runs.
type Store struct {
	fs  afero.Fs
	now func() time.Time
}

// NewStore creates a Store on a datapackage-rooted filesystem.
func NewStore(fsys afero.Fs) *Store {
	return &Store{fs: fsys, now: time.Now}
}

// LastUpdated is the marker stamped on every resource write.
type LastUpdated struct {
	Revision string    `json:"revision"`
	Updated  time.Time `json:"updated"`
	Resource string    `json:"resource"`
}

// Create writes a new resource and, when it has one, its metaschema.
func (s *Store) Create(ctx context.Context, run string, res *Resource) error {
	if err := datapackage.ValidateName("resource", res.Name); err != nil {
		return err
	}
	if res.Metaschema != nil {
		if _, err := datapackage.WriteJSON(s.fs, datapackage.MetaschemaPath(run, res.Name), res.Metaschema); err != nil {
			return fmt.Errorf("resource: write metaschema %q: %w", res.Name, err)
		}
	}
	return s.write(ctx, run, res)
}

// LoadByVariable loads the resource bound to a variable of the run.
func (s *Store) LoadByVariable(ctx context.Context, rc *runconfig.RunConfiguration, variable string) (*Resource, error) {
	state, err := rc.Variable(variable)
	if err != nil {
		return nil, err
	}
	if state.Resource == "" {
		return nil, fmt.Errorf("%w: variable %q is not bound to a resource", ErrResourceMissing, variable)
	}

	path := datapackage.ResourcePath(rc.Name, state.Resource)
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("resource: stat %s: %w", path, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q bound by variable %q has no document", ErrResourceMissing, state.Resource, variable)
	}

	var doc document
	raw, err := datapackage.ReadJSON(s.fs, path, &doc)
	if err != nil {
		return nil, fmt.Errorf("resource: %w", err)
	}
	res, sentinel, err := fromDocument(&doc)
	if err != nil {
		return nil, fmt.Errorf("resource %q: %w", state.Resource, err)
	}
	sum := sha256.Sum256(raw)
	res.digest = sum[:]

	if state.Metaschema != "" {
		meta, err := s.loadMetaschema(rc.Name, state.Metaschema)
		if err != nil {
			return nil, err
		}
		res.Metaschema = meta
	}
	if sentinel {
		res.SchemaFromMetaschema = true
		res.Schema = res.Metaschema
		if res.Schema == nil {
			res.Schema = &schema.TableSchema{Fields: []schema.Field{}}
		}
	}

	ctxlog.FromContext(ctx).Debug("Resource loaded.", "run", rc.Name, "variable", variable, "resource", res.Name, "rows", len(res.Data))
	return res, nil
}

func (s *Store) loadMetaschema(run, name string) (*schema.TableSchema, error) {
	path := datapackage.MetaschemaPath(run, name)
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("resource: stat %s: %w", path, err)
	}
	if !exists {
		return nil, nil
	}
	var meta schema.TableSchema
	if _, err := datapackage.ReadJSON(s.fs, path, &meta); err != nil {
		return nil, fmt.Errorf("resource: %w", err)
	}
	return &meta, nil
}

// Write persists a loaded resource and stamps the run's last-updated marker.
// It fails with ErrWriteConflict when the document changed on disk after the
// resource was loaded.
func (s *Store) Write(ctx context.Context, run string, res *Resource) error {
	if res.digest != nil {
		path := datapackage.ResourcePath(run, res.Name)
		current, err := afero.ReadFile(s.fs, path)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrWriteConflict, res.Name, err)
		}
		sum := sha256.Sum256(current)
		if !bytes.Equal(sum[:], res.digest) {
			return fmt.Errorf("%w: %q", ErrWriteConflict, res.Name)
		}
	}
	return s.write(ctx, run, res)
}

func (s *Store) write(ctx context.Context, run string, res *Resource) error {
	doc, err := res.toDocument()
	if err != nil {
		return fmt.Errorf("resource %q: %w", res.Name, err)
	}
	written, err := datapackage.WriteJSON(s.fs, datapackage.ResourcePath(run, res.Name), doc)
	if err != nil {
		return fmt.Errorf("resource: write %q: %w", res.Name, err)
	}
	sum := sha256.Sum256(written)
	res.digest = sum[:]

	marker := LastUpdated{
		Revision: uuid.NewString(),
		Updated:  s.now().UTC().Truncate(time.Second),
		Resource: res.Name,
	}
	if _, err := datapackage.WriteJSON(s.fs, datapackage.LastUpdatedPath(run), marker); err != nil {
		return fmt.Errorf("resource: stamp last-updated: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Resource written.", "run", run, "resource", res.Name, "revision", marker.Revision)
	return nil
}

// LastUpdated reads the run's marker. It returns nil when no resource of the
// run has been written yet.
func (s *Store) LastUpdated(run string) (*LastUpdated, error) {
	path := datapackage.LastUpdatedPath(run)
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("resource: stat %s: %w", path, err)
	}
	if !exists {
		return nil, nil
	}
	var marker LastUpdated
	if _, err := datapackage.ReadJSON(s.fs, path, &marker); err != nil {
		return nil, fmt.Errorf("resource: %w", err)
	}
	return &marker, nil
}

// ResetToDefault restores a resource to its default state and reports whether
// anything changed. Parameter resources get their default rows back; tabular
// resources lose their rows and schema.
func (s *Store) ResetToDefault(ctx context.Context, run string, res *Resource) (bool, error) {
	logger := ctxlog.FromContext(ctx)

	switch res.Profile {
	case schema.ProfileParameter:
		if SameRecords(res.Data, res.DefaultData) {
			logger.Info("Resource already at default, skipping.", "run", run, "resource", res.Name)
			return false, nil
		}
		res.Data = CloneRecords(res.DefaultData)
	case schema.ProfileTabular:
		if len(res.Data) == 0 && !res.SchemaFromMetaschema && res.Schema.IsEmpty() {
			logger.Info("Resource already empty, skipping.", "run", run, "resource", res.Name)
			return false, nil
		}
		res.Data = []schema.Record{}
		res.Schema = &schema.TableSchema{Fields: []schema.Field{}}
		res.SchemaFromMetaschema = false
	default:
		return false, fmt.Errorf("%w: %q on resource %q", ErrUnknownResourceProfile, res.Profile, res.Name)
	}

	if err := s.Write(ctx, run, res); err != nil {
		return false, err
	}
	logger.Info("Resource reset to default.", "run", run, "resource", res.Name)
	return true, nil
}
