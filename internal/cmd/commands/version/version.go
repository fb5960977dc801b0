package version

import (
	"github.com/handoff-labs/handoff/internal/cmd/base"
	"github.com/handoff-labs/handoff/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return `Usage: handoff version

Prints the handoff version.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
