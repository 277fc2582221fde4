// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSignature = `{
  "name": "kmeans",
  "container": "registry.local/kmeans:1",
  "signature": [
    {"name": "mode", "type": "string", "enum": ["a", "b"], "default": "b"},
    {"name": "threshold", "type": "number", "nullable": true},
    {"name": "table", "type": "resource", "default": {"resource": "t1", "data": []},
     "schema": {"fields": [{"name": "x", "type": "number"}]}},
    {"name": "params", "type": "parameters", "default": {"data": [{"name": "k", "value": 3}]}}
  ],
  "relationships": [
    {"source": "mode", "type": "value", "mappings": [
      {"values": ["a"], "targets": [
        {"name": "threshold", "kind": "value", "value": null},
        {"name": "table", "kind": "resource", "data": [{"x": 1}], "disabled": true}
      ]}
    ]}
  ]
}`

func TestSignatureDecoding(t *testing.T) {
	var sig Signature
	require.NoError(t, json.Unmarshal([]byte(sampleSignature), &sig))

	require.Len(t, sig.Variables, 4)
	assert.Equal(t, "kmeans", sig.Name)

	rule := sig.RuleFor("mode")
	require.NotNil(t, rule)
	assert.Nil(t, sig.RuleFor("table"))

	targets := rule.Mappings[0].Targets
	assert.True(t, targets[0].HasValue(), "explicit null is a present value")
	assert.False(t, targets[1].HasValue())
	assert.True(t, targets[1].HasData())
	assert.False(t, targets[0].HasData())
	require.NotNil(t, targets[1].Disabled)
	assert.True(t, *targets[1].Disabled)
}

func TestBindingDefault(t *testing.T) {
	var sig Signature
	require.NoError(t, json.Unmarshal([]byte(sampleSignature), &sig))

	table, _ := sig.Variable("table")
	def, err := table.BindingDefault()
	require.NoError(t, err)
	assert.Equal(t, "t1", def.Resource)
	assert.Empty(t, def.Data)
	assert.Equal(t, ProfileTabular, table.ResourceProfile())

	params, _ := sig.Variable("params")
	def, err = params.BindingDefault()
	require.NoError(t, err)
	assert.Equal(t, "params", def.Resource)
	assert.Equal(t, []Record{{"name": "k", "value": 3.0}}, def.Data)
	assert.Equal(t, ProfileParameter, params.ResourceProfile())

	threshold, _ := sig.Variable("threshold")
	assert.JSONEq(t, "null", string(threshold.DefaultValue()))
}
