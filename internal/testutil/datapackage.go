package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/vk/dpctl/internal/datapackage"
)

// Root is the host path reported by harness datapackages.
const Root = "/work/datapackage"

// Datapackage is an in-memory datapackage with a fake executor.
type Datapackage struct {
	t        testing.TB
	Fs       afero.Fs
	Executor *FakeExecutor
	Ctx      *datapackage.Context
}

// NewDatapackage creates an empty datapackage on a MemMapFs. Extra files are
// given as path -> content, relative to the datapackage root.
func NewDatapackage(t testing.TB, files map[string]string) *Datapackage {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, datapackage.DescriptorFile, []byte(`{"name": "test-package"}`+"\n"), 0o644))

	dp := &Datapackage{t: t, Fs: fsys, Executor: &FakeExecutor{}}
	for path, content := range files {
		dp.WriteFile(path, content)
	}

	ctx, err := datapackage.Open(fsys, Root, dp.Executor)
	require.NoError(t, err)
	dp.Ctx = ctx
	return dp
}

// WriteFile writes a file relative to the datapackage root.
func (d *Datapackage) WriteFile(path, content string) {
	d.t.Helper()
	require.NoError(d.t, d.Fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(d.t, afero.WriteFile(d.Fs, path, []byte(content), 0o644))
}

// AddAlgorithm writes a signature document.
func (d *Datapackage) AddAlgorithm(name, signature string) {
	d.t.Helper()
	d.WriteFile(datapackage.AlgorithmPath(name), signature)
}

// ReadFile returns the bytes of a file relative to the datapackage root.
func (d *Datapackage) ReadFile(path string) []byte {
	d.t.Helper()
	data, err := afero.ReadFile(d.Fs, path)
	require.NoError(d.t, err)
	return data
}

// Exists reports whether a path exists in the datapackage.
func (d *Datapackage) Exists(path string) bool {
	d.t.Helper()
	ok, err := afero.Exists(d.Fs, path)
	require.NoError(d.t, err)
	return ok
}
