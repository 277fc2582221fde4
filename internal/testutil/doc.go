// Package testutil builds in-memory datapackages and fakes the container
// executor for tests.
package testutil
