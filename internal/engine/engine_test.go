package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dpctl/internal/resource"
	"github.com/vk/dpctl/internal/runconfig"
	"github.com/vk/dpctl/internal/schema"
)

type fakeLoader struct {
	resources map[string]*resource.Resource
	calls     int
}

func (f *fakeLoader) LoadByVariable(_ context.Context, rc *runconfig.RunConfiguration, variable string) (*resource.Resource, error) {
	f.calls++
	state, err := rc.Variable(variable)
	if err != nil {
		return nil, err
	}
	res, ok := f.resources[state.Resource]
	if !ok {
		return nil, resource.ErrResourceMissing
	}
	return res, nil
}

func mustSignature(t *testing.T, doc string) *schema.Signature {
	t.Helper()
	var sig schema.Signature
	require.NoError(t, json.Unmarshal([]byte(doc), &sig))
	return &sig
}

const signatureDoc = `{
  "name": "alg",
  "signature": [
    {"name": "mode", "type": "string", "enum": ["a", "b", "c"]},
    {"name": "threshold", "type": "number", "nullable": true},
    {"name": "extra", "type": "boolean"},
    {"name": "table", "type": "resource"},
    {"name": "free", "type": "string"}
  ],
  "relationships": [
    {"source": "mode", "type": "value", "mappings": [
      {"values": ["a", "b"], "targets": [
        {"name": "threshold", "kind": "value", "value": 0.1},
        {"name": "extra", "kind": "value", "disabled": true},
        {"name": "table", "kind": "resource", "data": [{"x": 1}]},
        {"name": "table", "kind": "resource", "data": [{"x": 2}], "disabled": false}
      ]},
      {"values": ["a"], "targets": [
        {"name": "threshold", "kind": "value", "value": 0.9}
      ]},
      {"values": [null], "targets": [
        {"name": "threshold", "kind": "value", "value": null}
      ]},
      {"values": ["c"], "targets": [
        {"name": "threshold", "kind": "value", "value": 0.3},
        {"name": "extra", "kind": "toggle"}
      ]}
    ]},
    {"source": "free", "type": "expression", "mappings": []}
  ]
}`

func runWith(mode string) *runconfig.RunConfiguration {
	return &runconfig.RunConfiguration{
		Name: "r1",
		Data: []*runconfig.VariableState{
			{Name: "mode", Value: json.RawMessage(mode)},
			{Name: "threshold", Value: json.RawMessage(`0.5`)},
			{Name: "extra", Value: json.RawMessage(`false`)},
			{Name: "table", Value: json.RawMessage(`null`), Resource: "t1"},
			{Name: "free", Value: json.RawMessage(`"x"`)},
		},
	}
}

func newLoader() *fakeLoader {
	return &fakeLoader{resources: map[string]*resource.Resource{
		"t1": {Name: "t1", Profile: schema.ProfileTabular},
	}}
}

func value(t *testing.T, rc *runconfig.RunConfiguration, name string) string {
	t.Helper()
	v, err := rc.Variable(name)
	require.NoError(t, err)
	return string(v.Value)
}

func TestApply_FirstMatchWins(t *testing.T) {
	sig := mustSignature(t, signatureDoc)
	loader := newLoader()
	rc := runWith(`"a"`)

	out, err := Apply(context.Background(), sig, "mode", rc, loader)
	require.NoError(t, err)
	require.True(t, out.Fired)

	assert.JSONEq(t, "0.1", value(t, out.Run, "threshold"), "second mapping also lists a but must not apply")
	extra, _ := out.Run.Variable("extra")
	assert.True(t, extra.Disabled)
	assert.Equal(t, []string{"threshold"}, out.Changed)

	require.Len(t, out.Writes, 1, "targets on one resource share a single write")
	assert.Equal(t, []schema.Record{{"x": 2.0}}, out.Writes[0].Data)
	assert.Equal(t, 1, loader.calls)

	assert.JSONEq(t, "0.5", value(t, rc, "threshold"), "input configuration is not mutated")
	original, _ := rc.Variable("extra")
	assert.False(t, original.Disabled)
}

func TestApply_NullTrigger(t *testing.T) {
	sig := mustSignature(t, signatureDoc)

	out, err := Apply(context.Background(), sig, "mode", runWith(`null`), newLoader())
	require.NoError(t, err)
	require.True(t, out.Fired)
	assert.Equal(t, "null", value(t, out.Run, "threshold"))
}

func TestApply_NoOps(t *testing.T) {
	sig := mustSignature(t, signatureDoc)

	t.Run("no rule", func(t *testing.T) {
		rc := runWith(`"a"`)
		out, err := Apply(context.Background(), sig, "threshold", rc, newLoader())
		require.NoError(t, err)
		assert.False(t, out.Fired)
		assert.Same(t, rc, out.Run)
	})

	t.Run("no mapping matches", func(t *testing.T) {
		sig := mustSignature(t, signatureDoc)
		sig.Relationships[0].Mappings = sig.Relationships[0].Mappings[:1]
		out, err := Apply(context.Background(), sig, "mode", runWith(`"c"`), newLoader())
		require.NoError(t, err)
		assert.False(t, out.Fired)
		assert.Empty(t, out.Writes)
	})
}

func TestApply_UnsupportedRuleType(t *testing.T) {
	sig := mustSignature(t, signatureDoc)
	_, err := Apply(context.Background(), sig, "free", runWith(`"a"`), newLoader())
	require.ErrorIs(t, err, ErrUnsupportedRuleType)
}

func TestApply_UnsupportedTargetKindCommitsNothing(t *testing.T) {
	sig := mustSignature(t, signatureDoc)
	rc := runWith(`"c"`)

	out, err := Apply(context.Background(), sig, "mode", rc, newLoader())
	require.ErrorIs(t, err, ErrUnsupportedTargetKind)
	assert.Nil(t, out)
	assert.JSONEq(t, "0.5", value(t, rc, "threshold"))
}

func TestApply_MissingResource(t *testing.T) {
	sig := mustSignature(t, signatureDoc)
	loader := &fakeLoader{resources: map[string]*resource.Resource{}}

	_, err := Apply(context.Background(), sig, "mode", runWith(`"b"`), loader)
	require.ErrorIs(t, err, resource.ErrResourceMissing)
}

func TestApply_UnchangedValueIsNotReported(t *testing.T) {
	sig := mustSignature(t, signatureDoc)
	rc := runWith(`"a"`)
	rc.Data[1].Value = json.RawMessage(`0.1`)

	out, err := Apply(context.Background(), sig, "mode", rc, newLoader())
	require.NoError(t, err)
	assert.True(t, out.Fired)
	assert.Empty(t, out.Changed)
}

func TestApply_DisabledOnlyResourceTarget(t *testing.T) {
	sig := mustSignature(t, `{
  "signature": [
    {"name": "mode", "type": "string"},
    {"name": "table", "type": "resource"}
  ],
  "relationships": [
    {"source": "mode", "type": "value", "mappings": [
      {"values": ["a"], "targets": [{"name": "table", "kind": "resource", "disabled": true}]},
      {"values": ["b"], "targets": [{"name": "table", "kind": "resource", "data": []}]}
    ]}
  ]
}`)
	rows := []schema.Record{{"x": 1.0}, {"x": 2.0}}
	loader := &fakeLoader{resources: map[string]*resource.Resource{
		"t1": {Name: "t1", Profile: schema.ProfileTabular, Data: rows},
	}}
	rc := &runconfig.RunConfiguration{
		Name: "r1",
		Data: []*runconfig.VariableState{
			{Name: "mode", Value: json.RawMessage(`"a"`)},
			{Name: "table", Value: json.RawMessage(`null`), Resource: "t1"},
		},
	}

	out, err := Apply(context.Background(), sig, "mode", rc, loader)
	require.NoError(t, err)
	assert.True(t, out.Fired)
	assert.Empty(t, out.Writes)
	assert.Zero(t, loader.calls)
	state, err := out.Run.Variable("table")
	require.NoError(t, err)
	assert.True(t, state.Disabled)
	assert.Equal(t, rows, loader.resources["t1"].Data)

	t.Run("explicit empty data clears rows", func(t *testing.T) {
		rc.Data[0].Value = json.RawMessage(`"b"`)
		out, err := Apply(context.Background(), sig, "mode", rc, loader)
		require.NoError(t, err)
		require.Len(t, out.Writes, 1)
		assert.Empty(t, out.Writes[0].Data)
	})
}
