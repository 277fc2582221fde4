package lifecycle

import (
	"context"
	"encoding/json"

	"github.com/vk/dpctl/internal/ctxlog"
	"github.com/vk/dpctl/internal/datapackage"
	"github.com/vk/dpctl/internal/resource"
	"github.com/vk/dpctl/internal/runconfig"
	"github.com/vk/dpctl/internal/schema"
)

// Init materializes a run from the defaults of an algorithm's signature and
// propagates every relationship once, in declaration order. The run name
// defaults to the algorithm name. A failed Init leaves no run behind.
func (m *Manager) Init(ctx context.Context, algorithm, run string) (_ *runconfig.RunConfiguration, err error) {
	if run == "" {
		run = algorithm
	}
	ctx = ctxlog.With(ctx, "run", run, "algorithm", algorithm)
	logger := ctxlog.FromContext(ctx)

	if err := datapackage.ValidateName("run", run); err != nil {
		return nil, err
	}
	sig, err := m.registry.LoadSignature(ctx, algorithm)
	if err != nil {
		return nil, err
	}

	title := sig.Title
	if title == "" {
		title = run
	}
	rc := &runconfig.RunConfiguration{
		Name:      run,
		Title:     title,
		Profile:   runconfig.Profile,
		Algorithm: algorithm,
		Container: sig.Container,
		Data:      make([]*runconfig.VariableState, 0, len(sig.Variables)),
	}

	var created []*resource.Resource
	for _, decl := range sig.Variables {
		state := &runconfig.VariableState{Name: decl.Name}
		if !decl.IsResource() {
			state.Value = decl.DefaultValue()
			rc.Data = append(rc.Data, state)
			continue
		}

		res, err := newResource(decl)
		if err != nil {
			return nil, err
		}
		state.Value = json.RawMessage("null")
		state.Resource = res.Name
		if res.Metaschema != nil {
			state.Metaschema = res.Name
		}
		rc.Data = append(rc.Data, state)
		created = append(created, res)
	}

	if err := m.runs.Create(ctx, rc); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			m.discard(ctx, run)
		}
	}()

	for _, res := range created {
		if err := m.resources.Create(ctx, run, res); err != nil {
			return nil, err
		}
	}
	logger.Info("Run initialized.", "variables", len(rc.Data), "resources", len(created))

	for _, decl := range sig.Variables {
		if sig.RuleFor(decl.Name) == nil {
			continue
		}
		if rc, err = m.propagate(ctx, sig, decl.Name, rc); err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// discard removes a partially initialized run.
func (m *Manager) discard(ctx context.Context, run string) {
	logger := ctxlog.FromContext(ctx)
	if err := m.dp.Fs.RemoveAll(datapackage.RunDir(run)); err != nil {
		logger.Error("Failed to remove partially initialized run.", "error", err)
		return
	}
	logger.Warn("Removed partially initialized run.")
}

// newResource builds the initial resource of a resource-bound variable.
// Parameter resources start from their declared rows, which also become
// their default; tabular resources start empty with the declared schema.
func newResource(decl *schema.Declaration) (*resource.Resource, error) {
	def, err := decl.BindingDefault()
	if err != nil {
		return nil, err
	}
	res := &resource.Resource{
		Name:        def.Resource,
		Title:       decl.Title,
		Description: decl.Description,
		Profile:     decl.ResourceProfile(),
		Metaschema:  decl.Schema,
	}
	switch res.Profile {
	case schema.ProfileParameter:
		res.Data = resource.CloneRecords(def.Data)
		res.DefaultData = resource.CloneRecords(def.Data)
		res.SchemaFromMetaschema = true
	case schema.ProfileTabular:
		res.Data = []schema.Record{}
		res.Schema = decl.Schema
	default:
		res.Data = resource.CloneRecords(def.Data)
		res.Schema = decl.Schema
	}
	return res, nil
}
