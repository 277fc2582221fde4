// Package runconfig stores run configurations, one runs/<run>/run.json per
// run. The Store is the only writer of these documents.
package runconfig
