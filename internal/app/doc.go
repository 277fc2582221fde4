// Package app wires one dpctl invocation together: it resolves the
// datapackage, loads the tool configuration, builds the logger and the
// container executor, and exposes the lifecycle manager to the CLI. It is
// decoupled from argument parsing so it can be driven directly in tests.
package app
