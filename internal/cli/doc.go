// Package cli is responsible for parsing command-line arguments, dispatching
// subcommands and handling process-level concerns like exit codes. Global
// options become app.Options; each subcommand opens the App and calls one
// lifecycle operation.
package cli
