package cli

import (
	"fmt"
	"strings"

	mcli "github.com/mitchellh/cli"
	"github.com/vk/dpctl/internal/render"
)

func commandFactories(meta *Meta) map[string]mcli.CommandFactory {
	setVar := func() (mcli.Command, error) { return &SetVarCommand{Meta: meta}, nil }
	return map[string]mcli.CommandFactory{
		"init":       func() (mcli.Command, error) { return &InitCommand{Meta: meta}, nil },
		"run":        func() (mcli.Command, error) { return &RunCommand{Meta: meta}, nil },
		"view":       func() (mcli.Command, error) { return &ViewCommand{Meta: meta}, nil },
		"view-table": func() (mcli.Command, error) { return &ViewTableCommand{Meta: meta}, nil },
		"show":       func() (mcli.Command, error) { return &ShowCommand{Meta: meta}, nil },
		"load":       func() (mcli.Command, error) { return &LoadCommand{Meta: meta}, nil },
		"set-param":  func() (mcli.Command, error) { return &SetParamCommand{Meta: meta}, nil },
		"set-var":    setVar,
		"set-arg":    setVar,
		"reset":      func() (mcli.Command, error) { return &ResetCommand{Meta: meta}, nil },
		"algorithms": func() (mcli.Command, error) { return &AlgorithmsCommand{Meta: meta}, nil },
	}
}

// InitCommand creates a run from an algorithm's defaults.
type InitCommand struct{ *Meta }

func (c *InitCommand) Run(args []string) int {
	rest, ok := c.parse(c.flagSet("init"), args, 1, 2)
	if !ok {
		return c.usage(c.Help())
	}
	algorithm, run := rest[0], ""
	if len(rest) == 2 {
		run = rest[1]
	}

	a, ctx, err := c.open()
	if err != nil {
		return c.fail(err)
	}
	defer a.Close()

	rc, err := a.Manager().Init(ctx, algorithm, run)
	if err != nil {
		return c.fail(err)
	}
	c.Ui.Output(fmt.Sprintf("Initialized run %q of algorithm %q with %d variables.", rc.Name, rc.Algorithm, len(rc.Data)))
	return 0
}

func (c *InitCommand) Help() string {
	return strings.TrimSpace(`
Usage: dpctl [options] init ALGORITHM [RUN]

  Creates a run of ALGORITHM from the defaults of its signature. RUN
  defaults to the algorithm name.
`)
}

func (c *InitCommand) Synopsis() string { return "Create a run from an algorithm's defaults" }

// RunCommand executes the algorithm container of a run.
type RunCommand struct{ *Meta }

func (c *RunCommand) Run(args []string) int {
	rest, ok := c.parse(c.flagSet("run"), args, 1, 2)
	if !ok {
		return c.usage(c.Help())
	}
	container := ""
	if len(rest) == 2 {
		container = rest[1]
	}

	a, ctx, err := c.open()
	if err != nil {
		return c.fail(err)
	}
	defer a.Close()

	if _, err := a.Manager().Run(ctx, rest[0], container); err != nil {
		return c.fail(err)
	}
	c.Ui.Output(fmt.Sprintf("Executed run %q successfully.", rest[0]))
	return 0
}

func (c *RunCommand) Help() string {
	return strings.TrimSpace(`
Usage: dpctl [options] run RUN [CONTAINER]

  Runs the algorithm of RUN. CONTAINER overrides the image recorded in the
  run configuration.
`)
}

func (c *RunCommand) Synopsis() string { return "Execute the algorithm of a run" }

// ViewCommand renders a view of a run.
type ViewCommand struct{ *Meta }

func (c *ViewCommand) Run(args []string) int {
	rest, ok := c.parse(c.flagSet("view"), args, 2, 3)
	if !ok {
		return c.usage(c.Help())
	}
	container := ""
	if len(rest) == 3 {
		container = rest[2]
	}

	a, ctx, err := c.open()
	if err != nil {
		return c.fail(err)
	}
	defer a.Close()

	artifact, err := a.Manager().View(ctx, rest[0], rest[1], container)
	if err != nil {
		return c.fail(err)
	}
	c.Ui.Output(fmt.Sprintf("Generated %s view: %s", rest[1], artifact))
	return 0
}

func (c *ViewCommand) Help() string {
	return strings.TrimSpace(`
Usage: dpctl [options] view RUN VIEW [CONTAINER]

  Renders VIEW for RUN and prints the path of the generated artifact.
  CONTAINER overrides the image declared by the view.
`)
}

func (c *ViewCommand) Synopsis() string { return "Render a view of a run" }

// ViewTableCommand prints the rows of a resource variable.
type ViewTableCommand struct{ *Meta }

func (c *ViewTableCommand) Run(args []string) int {
	rest, ok := c.parse(c.flagSet("view-table"), args, 2, 2)
	if !ok {
		return c.usage(c.Help())
	}

	a, ctx, err := c.open()
	if err != nil {
		return c.fail(err)
	}
	defer a.Close()

	res, err := a.Manager().Table(ctx, rest[0], rest[1])
	if err != nil {
		return c.fail(err)
	}
	c.Ui.Output(render.Resource(res))
	return 0
}

func (c *ViewTableCommand) Help() string {
	return strings.TrimSpace(`
Usage: dpctl [options] view-table RUN VARIABLE

  Prints the resource bound to VARIABLE as a table.
`)
}

func (c *ViewTableCommand) Synopsis() string { return "Print the rows of a resource variable" }

// ShowCommand prints the variables of a run.
type ShowCommand struct{ *Meta }

func (c *ShowCommand) Run(args []string) int {
	rest, ok := c.parse(c.flagSet("show"), args, 1, 1)
	if !ok {
		return c.usage(c.Help())
	}

	a, ctx, err := c.open()
	if err != nil {
		return c.fail(err)
	}
	defer a.Close()

	rc, sig, err := a.Manager().Show(ctx, rest[0])
	if err != nil {
		return c.fail(err)
	}
	marker, err := a.Manager().LastUpdated(ctx, rest[0])
	if err != nil {
		return c.fail(err)
	}
	c.Ui.Output(render.Variables(rc, sig))
	c.Ui.Output(render.LastUpdated(marker))
	return 0
}

func (c *ShowCommand) Help() string {
	return strings.TrimSpace(`
Usage: dpctl [options] show RUN

  Prints every variable of RUN with its type, value and disabled flag,
  followed by the time of the last resource write.
`)
}

func (c *ShowCommand) Synopsis() string { return "Show the variables of a run" }

// LoadCommand replaces the rows of a resource from a delimited file.
type LoadCommand struct{ *Meta }

func (c *LoadCommand) Run(args []string) int {
	rest, ok := c.parse(c.flagSet("load"), args, 3, 3)
	if !ok {
		return c.usage(c.Help())
	}

	a, ctx, err := c.open()
	if err != nil {
		return c.fail(err)
	}
	defer a.Close()

	n, err := a.Manager().Load(ctx, rest[0], rest[1], rest[2])
	if err != nil {
		return c.fail(err)
	}
	c.Ui.Output(fmt.Sprintf("Loaded %d rows into %q.", n, rest[1]))
	return 0
}

func (c *LoadCommand) Help() string {
	return strings.TrimSpace(`
Usage: dpctl [options] load RUN VARIABLE FILE

  Replaces the rows of the resource bound to VARIABLE with the contents of
  FILE, a comma separated file with a header row.
`)
}

func (c *LoadCommand) Synopsis() string { return "Load a delimited file into a resource" }

// SetParamCommand updates one row of a parameter resource.
type SetParamCommand struct{ *Meta }

func (c *SetParamCommand) Run(args []string) int {
	rest, ok := c.parse(c.flagSet("set-param"), args, 4, 4)
	if !ok {
		return c.usage(c.Help())
	}

	a, ctx, err := c.open()
	if err != nil {
		return c.fail(err)
	}
	defer a.Close()

	if err := a.Manager().SetParam(ctx, rest[0], rest[1], rest[2], rest[3]); err != nil {
		return c.fail(err)
	}
	c.Ui.Output(fmt.Sprintf("Set parameter %q of %q.", rest[2], rest[1]))
	return 0
}

func (c *SetParamCommand) Help() string {
	return strings.TrimSpace(`
Usage: dpctl [options] set-param RUN VARIABLE PARAM VALUE

  Sets the value of the row named PARAM in the parameter resource bound to
  VARIABLE.
`)
}

func (c *SetParamCommand) Synopsis() string { return "Set a value in a parameter resource" }

// SetVarCommand sets a scalar variable and propagates its relationships.
type SetVarCommand struct{ *Meta }

func (c *SetVarCommand) Run(args []string) int {
	rest, ok := c.parse(c.flagSet("set-var"), args, 3, 3)
	if !ok {
		return c.usage(c.Help())
	}

	a, ctx, err := c.open()
	if err != nil {
		return c.fail(err)
	}
	defer a.Close()

	rc, err := a.Manager().SetVariable(ctx, rest[0], rest[1], rest[2])
	if err != nil {
		return c.fail(err)
	}
	if v, err := rc.Variable(rest[1]); err == nil {
		c.Ui.Output(fmt.Sprintf("Set %q to %s.", rest[1], v.Value))
	}
	return 0
}

func (c *SetVarCommand) Help() string {
	return strings.TrimSpace(`
Usage: dpctl [options] set-var RUN NAME VALUE

  Sets the scalar variable NAME of RUN. VALUE is parsed as a literal; for
  string variables unquoted text is taken as is and "null" clears a
  nullable variable. Relationships sourced at NAME are applied afterwards.

  Alias: set-arg
`)
}

func (c *SetVarCommand) Synopsis() string { return "Set a scalar variable of a run" }

// ResetCommand restores a run's resources to their defaults.
type ResetCommand struct{ *Meta }

func (c *ResetCommand) Run(args []string) int {
	rest, ok := c.parse(c.flagSet("reset"), args, 1, 1)
	if !ok {
		return c.usage(c.Help())
	}

	a, ctx, err := c.open()
	if err != nil {
		return c.fail(err)
	}
	defer a.Close()

	if err := a.Manager().Reset(ctx, rest[0]); err != nil {
		return c.fail(err)
	}
	c.Ui.Output(fmt.Sprintf("Reset run %q.", rest[0]))
	return 0
}

func (c *ResetCommand) Help() string {
	return strings.TrimSpace(`
Usage: dpctl [options] reset RUN

  Restores parameter resources to their default rows, clears tabular
  resources and removes generated view artifacts. Scalar variables are
  left untouched.
`)
}

func (c *ResetCommand) Synopsis() string { return "Restore a run's resources to their defaults" }

// AlgorithmsCommand lists the algorithms of the datapackage.
type AlgorithmsCommand struct{ *Meta }

func (c *AlgorithmsCommand) Run(args []string) int {
	if _, ok := c.parse(c.flagSet("algorithms"), args, 0, 0); !ok {
		return c.usage(c.Help())
	}

	a, ctx, err := c.open()
	if err != nil {
		return c.fail(err)
	}
	defer a.Close()

	names, err := a.Manager().Algorithms(ctx)
	if err != nil {
		return c.fail(err)
	}
	for _, name := range names {
		c.Ui.Output(name)
	}
	return 0
}

func (c *AlgorithmsCommand) Help() string {
	return strings.TrimSpace(`
Usage: dpctl [options] algorithms

  Lists the algorithms declared under algorithms/.
`)
}

func (c *AlgorithmsCommand) Synopsis() string { return "List the algorithms of the datapackage" }
