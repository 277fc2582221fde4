package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliSignature = `{
  "name": "demo",
  "container": "registry.local/demo:1",
  "signature": [
    {"name": "mode", "type": "string", "enum": ["a", "b"], "default": "b"},
    {"name": "threshold", "type": "number", "nullable": true, "default": 0.5},
    {"name": "table", "type": "resource", "default": {"resource": "t1", "data": []},
     "schema": {"fields": [{"name": "x", "type": "number"}, {"name": "label", "type": "string"}]}},
    {"name": "params", "type": "parameters",
     "default": {"resource": "p1", "data": [{"name": "k", "value": 3}]}}
  ],
  "relationships": [
    {"source": "mode", "type": "value", "mappings": [
      {"values": ["a"], "targets": [{"name": "threshold", "kind": "value", "value": 0.1}]}
    ]}
  ]
}`

func newDatapackage(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"datapackage.json":     `{"name": "cli-test"}`,
		"algorithms/demo.json": cliSignature,
	}
	for path, content := range files {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

type result struct {
	out, err string
	exitErr  error
}

func execute(t *testing.T, root string, args ...string) result {
	t.Helper()
	var out, errW bytes.Buffer
	err := Execute(context.Background(), append([]string{"-C", root}, args...), &out, &errW)
	return result{out: out.String(), err: errW.String(), exitErr: err}
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected *ExitError, got %v", err)
	return exitErr.Code
}

func TestParse_Globals(t *testing.T) {
	inv, shouldExit, err := Parse([]string{"-C", "/tmp/pkg", "-log-level", "DEBUG", "-propagation", "transitive", "show", "r1"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, "/tmp/pkg", inv.Options.Root)
	assert.Equal(t, "debug", inv.Options.Overrides.Log.Level)
	assert.Equal(t, "transitive", inv.Options.Overrides.Propagation)
	assert.Equal(t, []string{"show", "r1"}, inv.Args)
}

func TestParse_NoCommandPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	inv, shouldExit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, inv)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "set-var")
}

func TestParse_UnknownFlag(t *testing.T) {
	_, _, err := Parse([]string{"--this-is-not-a-valid-flag"}, &bytes.Buffer{})
	assert.Equal(t, 2, exitCode(t, err))
	assert.Contains(t, err.Error(), "flag provided but not defined")
}

func TestExecute_InitSetVarShow(t *testing.T) {
	root := newDatapackage(t)

	res := execute(t, root, "init", "demo", "r1")
	require.NoError(t, res.exitErr, res.err)
	assert.Contains(t, res.out, `Initialized run "r1" of algorithm "demo" with 4 variables.`)

	res = execute(t, root, "set-var", "r1", "mode", "a")
	require.NoError(t, res.exitErr, res.err)
	assert.Contains(t, res.out, `Set "mode" to "a".`)

	res = execute(t, root, "show", "r1")
	require.NoError(t, res.exitErr, res.err)
	assert.Contains(t, res.out, "threshold")
	assert.Contains(t, res.out, "0.1")
	assert.Contains(t, res.out, "by a write to ")

	res = execute(t, root, "set-arg", "r1", "threshold", "null")
	require.NoError(t, res.exitErr, res.err)
	assert.Contains(t, res.out, `Set "threshold" to null.`)
}

func TestExecute_LoadViewTableReset(t *testing.T) {
	root := newDatapackage(t)
	require.NoError(t, execute(t, root, "init", "demo", "r1").exitErr)

	csvPath := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("x,label\n1,first\n2.5,second\n"), 0o644))

	res := execute(t, root, "load", "r1", "table", csvPath)
	require.NoError(t, res.exitErr, res.err)
	assert.Contains(t, res.out, `Loaded 2 rows into "table".`)

	res = execute(t, root, "view-table", "r1", "table")
	require.NoError(t, res.exitErr, res.err)
	assert.Contains(t, res.out, "second")
	assert.Contains(t, res.out, "2.5")

	res = execute(t, root, "set-param", "r1", "params", "k", "7")
	require.NoError(t, res.exitErr, res.err)

	res = execute(t, root, "reset", "r1")
	require.NoError(t, res.exitErr, res.err)

	res = execute(t, root, "view-table", "r1", "table")
	require.NoError(t, res.exitErr, res.err)
	assert.NotContains(t, res.out, "second")

	res = execute(t, root, "view-table", "r1", "params")
	require.NoError(t, res.exitErr, res.err)
	assert.Contains(t, res.out, "3")
	assert.NotContains(t, res.out, "7")
}

func TestExecute_Algorithms(t *testing.T) {
	res := execute(t, newDatapackage(t), "algorithms")
	require.NoError(t, res.exitErr, res.err)
	assert.Equal(t, "demo\n", res.out)
}

func TestExecute_Errors(t *testing.T) {
	root := newDatapackage(t)

	res := execute(t, root, "show", "missing")
	assert.Equal(t, 1, exitCode(t, res.exitErr))
	assert.Contains(t, res.err, "run not found")

	res = execute(t, root, "init")
	assert.Equal(t, 2, exitCode(t, res.exitErr))
	assert.Contains(t, res.err, "Usage: dpctl [options] init ALGORITHM [RUN]")

	res = execute(t, root, "frobnicate")
	assert.Equal(t, 127, exitCode(t, res.exitErr))

	res = execute(t, t.TempDir(), "algorithms")
	assert.Equal(t, 1, exitCode(t, res.exitErr))
	assert.Contains(t, res.err, "datapackage.json")
}

func TestExecute_SetVarRejectsResource(t *testing.T) {
	root := newDatapackage(t)
	require.NoError(t, execute(t, root, "init", "demo", "r1").exitErr)
	before, err := os.ReadFile(filepath.Join(root, "runs", "r1", "run.json"))
	require.NoError(t, err)

	res := execute(t, root, "set-var", "r1", "table", "x")
	assert.Equal(t, 1, exitCode(t, res.exitErr))

	after, err := os.ReadFile(filepath.Join(root, "runs", "r1", "run.json"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestExecute_RunUsesDockerBin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a unix shell")
	}
	docker := filepath.Join(t.TempDir(), "docker")
	require.NoError(t, os.WriteFile(docker, []byte("#!/bin/sh\necho \"$@\"\n"), 0o755))

	root := newDatapackage(t)
	require.NoError(t, execute(t, root, "init", "demo", "r1").exitErr)

	res := execute(t, root, "-docker-bin", docker, "run", "r1")
	require.NoError(t, res.exitErr, res.err)
	assert.Contains(t, res.out, "-e ALGORITHM=demo -e ARGUMENTS=r1 -e CONTAINER=registry.local/demo:1 registry.local/demo:1")
	assert.Contains(t, res.out, `Executed run "r1" successfully.`)
}
