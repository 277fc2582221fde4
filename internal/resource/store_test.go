package resource

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dpctl/internal/datapackage"
	"github.com/vk/dpctl/internal/runconfig"
	"github.com/vk/dpctl/internal/schema"
	"github.com/vk/dpctl/internal/testutil"
)

var paramMeta = &schema.TableSchema{Fields: []schema.Field{
	{Name: "name", Type: "string"},
	{Name: "value", Type: "any"},
}}

func testRun() *runconfig.RunConfiguration {
	return &runconfig.RunConfiguration{
		Name:    "r1",
		Profile: runconfig.Profile,
		Data: []*runconfig.VariableState{
			{Name: "mode", Value: json.RawMessage(`"a"`)},
			{Name: "table", Value: json.RawMessage(`null`), Resource: "t1", Metaschema: "t1"},
			{Name: "params", Value: json.RawMessage(`null`), Resource: "p1", Metaschema: "p1"},
		},
	}
}

func newStore(t *testing.T) (*Store, *testutil.Datapackage) {
	t.Helper()
	dp := testutil.NewDatapackage(t, nil)
	store := NewStore(dp.Fs)
	store.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "r1", &Resource{
		Name:       "t1",
		Profile:    schema.ProfileTabular,
		Schema:     &schema.TableSchema{Fields: []schema.Field{{Name: "x", Type: "number"}}},
		Metaschema: &schema.TableSchema{Fields: []schema.Field{{Name: "x", Type: "number"}}},
	}))
	rows := []schema.Record{{"name": "k", "value": 3.0}}
	require.NoError(t, store.Create(ctx, "r1", &Resource{
		Name:                 "p1",
		Profile:              schema.ProfileParameter,
		Data:                 rows,
		DefaultData:          CloneRecords(rows),
		Metaschema:           paramMeta,
		SchemaFromMetaschema: true,
	}))
	return store, dp
}

func TestCreate_WritesSentinelAndMetaschema(t *testing.T) {
	_, dp := newStore(t)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(dp.ReadFile(datapackage.ResourcePath("r1", "p1")), &doc))
	assert.Equal(t, SchemaSentinel, doc["schema"])
	assert.Equal(t, []any{map[string]any{"name": "k", "value": 3.0}}, doc["defaultData"])

	assert.True(t, dp.Exists(datapackage.MetaschemaPath("r1", "p1")))
	assert.True(t, dp.Exists(datapackage.MetaschemaPath("r1", "t1")))
}

func TestLoadByVariable(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	res, err := store.LoadByVariable(ctx, testRun(), "params")
	require.NoError(t, err)
	assert.True(t, res.SchemaFromMetaschema)
	assert.Equal(t, paramMeta, res.Schema)
	assert.Equal(t, paramMeta, res.Metaschema)

	res, err = store.LoadByVariable(ctx, testRun(), "table")
	require.NoError(t, err)
	assert.False(t, res.SchemaFromMetaschema)
	assert.Equal(t, "x", res.Schema.Fields[0].Name)

	_, err = store.LoadByVariable(ctx, testRun(), "mode")
	require.ErrorIs(t, err, ErrResourceMissing)

	_, err = store.LoadByVariable(ctx, testRun(), "ghost")
	require.ErrorIs(t, err, runconfig.ErrVariableNotFound)
}

func TestWriteThenLoad_RoundTrips(t *testing.T) {
	store, dp := newStore(t)
	ctx := context.Background()

	for _, variable := range []string{"table", "params"} {
		t.Run(variable, func(t *testing.T) {
			res, err := store.LoadByVariable(ctx, testRun(), variable)
			require.NoError(t, err)
			res.Data = []schema.Record{{"name": "k", "value": 7.0, "x": 1.5}}

			require.NoError(t, store.Write(ctx, "r1", res))
			again, err := store.LoadByVariable(ctx, testRun(), variable)
			require.NoError(t, err)

			if diff := cmp.Diff(res.Data, again.Data); diff != "" {
				t.Errorf("data mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, res.Schema, again.Schema)
		})
	}

	var doc map[string]any
	require.NoError(t, json.Unmarshal(dp.ReadFile(datapackage.ResourcePath("r1", "p1")), &doc))
	assert.Equal(t, SchemaSentinel, doc["schema"], "the borrowed schema is never written")
}

func TestWrite_StampsMarker(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	res, err := store.LoadByVariable(ctx, testRun(), "table")
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, "r1", res))

	marker, err := store.LastUpdated("r1")
	require.NoError(t, err)
	assert.Equal(t, "t1", marker.Resource)
	assert.True(t, marker.Updated.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))
	_, err = uuid.Parse(marker.Revision)
	require.NoError(t, err)

	none, err := store.LastUpdated("never-written")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestWrite_Conflict(t *testing.T) {
	store, dp := newStore(t)
	ctx := context.Background()

	res, err := store.LoadByVariable(ctx, testRun(), "table")
	require.NoError(t, err)

	dp.WriteFile(datapackage.ResourcePath("r1", "t1"), `{"name":"t1","profile":"tabular-data-resource","schema":{"fields":[]},"data":[{"x":9}]}`)

	res.Data = []schema.Record{{"x": 1.0}}
	err = store.Write(ctx, "r1", res)
	require.ErrorIs(t, err, ErrWriteConflict)
}

func TestWrite_ConsecutiveWritesOfSameResource(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	res, err := store.LoadByVariable(ctx, testRun(), "table")
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, "r1", res))
	res.Data = []schema.Record{{"x": 2.0}}
	require.NoError(t, store.Write(ctx, "r1", res))
}

func TestResetToDefault(t *testing.T) {
	store, dp := newStore(t)
	ctx := context.Background()

	t.Run("parameter", func(t *testing.T) {
		res, err := store.LoadByVariable(ctx, testRun(), "params")
		require.NoError(t, err)

		changed, err := store.ResetToDefault(ctx, "r1", res)
		require.NoError(t, err)
		assert.False(t, changed, "already at default")

		res.Data = []schema.Record{{"name": "k", "value": 5.0}}
		require.NoError(t, store.Write(ctx, "r1", res))

		changed, err = store.ResetToDefault(ctx, "r1", res)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, []schema.Record{{"name": "k", "value": 3.0}}, res.Data)
	})

	t.Run("tabular", func(t *testing.T) {
		res, err := store.LoadByVariable(ctx, testRun(), "table")
		require.NoError(t, err)

		changed, err := store.ResetToDefault(ctx, "r1", res)
		require.NoError(t, err)
		assert.True(t, changed, "declared schema is cleared")

		before := dp.ReadFile(datapackage.ResourcePath("r1", "t1"))
		changed, err = store.ResetToDefault(ctx, "r1", res)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, before, dp.ReadFile(datapackage.ResourcePath("r1", "t1")))
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := store.ResetToDefault(ctx, "r1", &Resource{Name: "odd", Profile: "data-resource"})
		require.ErrorIs(t, err, ErrUnknownResourceProfile)
	})
}
