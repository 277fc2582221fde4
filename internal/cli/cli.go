package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/dpctl/internal/app"
	"github.com/vk/dpctl/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Message
}

// Invocation is the result of parsing the global options.
type Invocation struct {
	Options app.Options
	// Args starts with the subcommand name.
	Args []string
}

const usageText = `
dpctl - configure, run and inspect algorithm runs inside a datapackage.

Usage:
  dpctl [options] <command> [args]

Options:
`

// Parse processes the global options that precede the subcommand. It returns
// the invocation, a boolean indicating if the program should exit cleanly,
// or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	flagSet := flag.NewFlagSet("dpctl", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usageText)
		flagSet.PrintDefaults()
		fmt.Fprintf(output, "\nCommands:\n%s\n", listCommands(commandFactories(&Meta{})))
	}

	rootFlag := flagSet.String("C", "", "Datapackage directory. Defaults to the working directory.")
	logLevelFlag := flagSet.String("log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format: 'text' or 'json'.")
	logFileFlag := flagSet.String("log-file", "", "Also write JSON logs to this file, relative to the datapackage.")
	propagationFlag := flagSet.String("propagation", "", "Relationship propagation: 'one-hop' or 'transitive'.")
	dockerBinFlag := flagSet.String("docker-bin", "", "Container runtime binary.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	overrides := config.Config{
		Log: config.LogConfig{
			Level:  strings.ToLower(*logLevelFlag),
			Format: strings.ToLower(*logFormatFlag),
			File:   *logFileFlag,
		},
		Executor:    config.ExecutorConfig{DockerBin: *dockerBinFlag},
		Propagation: strings.ToLower(*propagationFlag),
	}
	return &Invocation{
		Options: app.Options{Root: *rootFlag, Overrides: overrides},
		Args:    flagSet.Args(),
	}, false, nil
}
