// Package datapackage describes the directory a dpctl invocation operates on
// and carries it, together with the container executor, as an explicit
// Context value. Nothing in dpctl reads the working directory or a global
// client: every operation receives a *Context.
//
// Layout, relative to the datapackage root:
//
//	datapackage.json
//	.dpctl.yaml                         optional tool configuration
//	algorithms/<algorithm>.json         signatures
//	views/<view>.json                   view descriptors
//	runs/<run>/run.json                 run configuration
//	runs/<run>/resources/<name>.json    resources
//	runs/<run>/metaschemas/<name>.json  metaschemas of resource variables
//	runs/<run>/views/<view>.p           rendered view artifacts
//	runs/<run>/last-updated.json        last resource write marker
package datapackage
