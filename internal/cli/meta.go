package cli

import (
	"context"
	"flag"
	"io"

	mcli "github.com/mitchellh/cli"
	"github.com/vk/dpctl/internal/app"
)

// Meta is embedded in every command and carries what they share.
type Meta struct {
	Ui      mcli.Ui
	Ctx     context.Context
	Options app.Options
}

// open builds the App for one command run. The caller must Close it.
func (m *Meta) open() (*app.App, context.Context, error) {
	a, err := app.NewApp(m.Options)
	if err != nil {
		return nil, nil, err
	}
	return a, a.Context(m.Ctx), nil
}

func (m *Meta) fail(err error) int {
	m.Ui.Error("Error: " + err.Error())
	return 1
}

// usage reports a malformed command line.
func (m *Meta) usage(help string) int {
	m.Ui.Error(help)
	return 2
}

func (m *Meta) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

// parse parses flags and checks the positional argument count.
func (m *Meta) parse(fs *flag.FlagSet, args []string, minArgs, maxArgs int) ([]string, bool) {
	if err := fs.Parse(args); err != nil {
		m.Ui.Error(err.Error())
		return nil, false
	}
	rest := fs.Args()
	if len(rest) < minArgs || len(rest) > maxArgs {
		return nil, false
	}
	return rest, true
}
