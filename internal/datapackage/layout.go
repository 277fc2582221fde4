package datapackage

import "path/filepath"

const (
	AlgorithmsDir = "algorithms"
	ViewsDir      = "views"
	RunsDir       = "runs"

	runConfigFile   = "run.json"
	resourcesDir    = "resources"
	metaschemasDir  = "metaschemas"
	lastUpdatedFile = "last-updated.json"
	ViewArtifactExt = ".p"
	documentExt     = ".json"
)

// AlgorithmPath returns the signature document of an algorithm.
func AlgorithmPath(algorithm string) string {
	return filepath.Join(AlgorithmsDir, algorithm+documentExt)
}

// ViewPath returns the descriptor of a view.
func ViewPath(view string) string {
	return filepath.Join(ViewsDir, view+documentExt)
}

// RunDir returns the directory holding every artifact of a run.
func RunDir(run string) string {
	return filepath.Join(RunsDir, run)
}

// RunConfigPath returns the run configuration document.
func RunConfigPath(run string) string {
	return filepath.Join(RunDir(run), runConfigFile)
}

// ResourcePath returns the document of a resource owned by a run.
func ResourcePath(run, resource string) string {
	return filepath.Join(RunDir(run), resourcesDir, resource+documentExt)
}

// MetaschemaPath returns the metaschema document bound to a run variable.
func MetaschemaPath(run, name string) string {
	return filepath.Join(RunDir(run), metaschemasDir, name+documentExt)
}

// RunViewsDir returns the directory of rendered view artifacts for a run.
func RunViewsDir(run string) string {
	return filepath.Join(RunDir(run), ViewsDir)
}

// ViewArtifactPath returns the rendered artifact of a (run, view) pair.
func ViewArtifactPath(run, view string) string {
	return filepath.Join(RunViewsDir(run), view+ViewArtifactExt)
}

// LastUpdatedPath returns the run's last-updated marker.
func LastUpdatedPath(run string) string {
	return filepath.Join(RunDir(run), lastUpdatedFile)
}
