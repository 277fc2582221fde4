package resource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/vk/dpctl/internal/schema"
)

// SchemaSentinel is stored instead of a field list when the resource uses
// its variable's metaschema.
const SchemaSentinel = "metaschema"

var (
	ErrResourceMissing        = errors.New("resource missing")
	ErrUnknownResourceProfile = errors.New("unknown resource profile")
	ErrWriteConflict          = errors.New("resource changed since it was loaded")
)

// Resource is a tabular document owned by one run.
type Resource struct {
	Name        string
	Title       string
	Description string
	Profile     string
	Schema      *schema.TableSchema
	Data        []schema.Record
	DefaultData []schema.Record

	// Metaschema is the schema declared by the owning variable. It is
	// attached on load and never written with the resource.
	Metaschema *schema.TableSchema
	// SchemaFromMetaschema is set when Schema was substituted from
	// Metaschema because the document holds the sentinel.
	SchemaFromMetaschema bool

	digest []byte
}

type document struct {
	Name        string           `json:"name"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	Profile     string           `json:"profile"`
	Schema      json.RawMessage  `json:"schema"`
	Data        []schema.Record  `json:"data"`
	DefaultData *[]schema.Record `json:"defaultData,omitempty"`
}

func (r *Resource) toDocument() (*document, error) {
	doc := &document{
		Name:        r.Name,
		Title:       r.Title,
		Description: r.Description,
		Profile:     r.Profile,
		Data:        r.Data,
	}
	if doc.Data == nil {
		doc.Data = []schema.Record{}
	}
	if r.DefaultData != nil || r.Profile == schema.ProfileParameter {
		def := r.DefaultData
		if def == nil {
			def = []schema.Record{}
		}
		doc.DefaultData = &def
	}

	if r.SchemaFromMetaschema {
		doc.Schema = json.RawMessage(`"` + SchemaSentinel + `"`)
		return doc, nil
	}
	table := r.Schema
	if table == nil {
		table = &schema.TableSchema{}
	}
	if table.Fields == nil {
		table = &schema.TableSchema{Fields: []schema.Field{}}
	}
	raw, err := json.Marshal(table)
	if err != nil {
		return nil, err
	}
	doc.Schema = raw
	return doc, nil
}

// fromDocument decodes a stored document. sentinel reports whether the
// stored schema is the metaschema sentinel.
func fromDocument(doc *document) (r *Resource, sentinel bool, err error) {
	r = &Resource{
		Name:        doc.Name,
		Title:       doc.Title,
		Description: doc.Description,
		Profile:     doc.Profile,
		Data:        doc.Data,
	}
	if r.Data == nil {
		r.Data = []schema.Record{}
	}
	if doc.DefaultData != nil {
		r.DefaultData = *doc.DefaultData
	}

	trimmed := bytes.TrimSpace(doc.Schema)
	switch {
	case schema.IsNull(trimmed):
		r.Schema = &schema.TableSchema{Fields: []schema.Field{}}
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, false, err
		}
		if s != SchemaSentinel {
			return nil, false, fmt.Errorf("unknown schema reference %q", s)
		}
		sentinel = true
	default:
		var table schema.TableSchema
		if err := json.Unmarshal(trimmed, &table); err != nil {
			return nil, false, fmt.Errorf("schema: %w", err)
		}
		r.Schema = &table
	}
	return r, sentinel, nil
}

// SameRecords compares two row lists, treating nil and empty as equal.
func SameRecords(a, b []schema.Record) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// CloneRecords returns a copy of rows whose maps can be mutated freely.
func CloneRecords(rows []schema.Record) []schema.Record {
	out := make([]schema.Record, len(rows))
	for i, row := range rows {
		copied := make(schema.Record, len(row))
		for k, v := range row {
			copied[k] = v
		}
		out[i] = copied
	}
	return out
}
