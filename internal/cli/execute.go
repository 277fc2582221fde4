package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	mcli "github.com/mitchellh/cli"
)

// Execute parses args and runs the selected subcommand. A non-zero command
// status is returned as an *ExitError with an empty message, since the
// command has already reported it.
func Execute(ctx context.Context, args []string, out, errW io.Writer) error {
	inv, shouldExit, err := Parse(args, out)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	inv.Options.Out = out
	inv.Options.Err = errW
	meta := &Meta{
		Ui:      &mcli.BasicUi{Writer: out, ErrorWriter: errW},
		Ctx:     ctx,
		Options: inv.Options,
	}
	commands := commandFactories(meta)
	c := &mcli.CLI{
		Name:        "dpctl",
		Args:        inv.Args,
		Commands:    commands,
		HelpFunc:    helpFunc,
		HelpWriter:  out,
		ErrorWriter: errW,
	}

	code, err := c.Run()
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

func helpFunc(commands map[string]mcli.CommandFactory) string {
	return fmt.Sprintf("Usage: dpctl [options] <command> [args]\n\nCommands:\n%s", listCommands(commands))
}

func listCommands(commands map[string]mcli.CommandFactory) string {
	names := make([]string, 0, len(commands))
	width := 0
	for name := range commands {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		cmd, err := commands[name]()
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "  %-*s  %s\n", width, name, cmd.Synopsis())
	}
	return strings.TrimRight(b.String(), "\n")
}
