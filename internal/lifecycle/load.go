package lifecycle

import (
	"context"
	"fmt"

	"github.com/vk/dpctl/internal/ctxlog"
	"github.com/vk/dpctl/internal/ingest"
	"github.com/vk/dpctl/internal/schema"
)

// Load replaces the rows of a resource variable with the contents of a
// delimited file. A resource without a schema takes its variable's
// metaschema, or one inferred from the file header.
func (m *Manager) Load(ctx context.Context, run, variable, path string) (int, error) {
	ctx = ctxlog.With(ctx, "run", run, "variable", variable)

	rc, _, decl, err := m.target(ctx, run, variable)
	if err != nil {
		return 0, err
	}
	if !decl.IsResource() {
		return 0, fmt.Errorf("%w: %q is a scalar, use set-var", schema.ErrWrongCommandForProfile, variable)
	}
	res, err := m.resources.LoadByVariable(ctx, rc, variable)
	if err != nil {
		return 0, err
	}

	fields := res.Schema
	if fields.IsEmpty() {
		fields = res.Metaschema
	}
	rows, header, err := ingest.ReadFile(m.sources, path, fields)
	if err != nil {
		return 0, err
	}

	res.Data = rows
	if res.Schema.IsEmpty() && !res.SchemaFromMetaschema {
		res.Schema = schemaFor(res.Metaschema, header)
	}
	if err := m.resources.Write(ctx, run, res); err != nil {
		return 0, err
	}
	ctxlog.FromContext(ctx).Info("Resource loaded from file.", "path", path, "rows", len(rows))
	return len(rows), nil
}

func schemaFor(meta *schema.TableSchema, header []string) *schema.TableSchema {
	out := &schema.TableSchema{Fields: make([]schema.Field, 0, len(header))}
	for _, name := range header {
		field, ok := meta.Field(name)
		if !ok {
			field = schema.Field{Name: name, Type: "string"}
		}
		out.Fields = append(out.Fields, field)
	}
	return out
}
