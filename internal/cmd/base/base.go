// Package base carries the plumbing shared by all CLI commands.
package base

import (
	"bytes"
	"flag"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded in every CLI command.
type Command struct {
	// UI is the command-line UI for input and output.
	UI cli.Ui

	// Log is the process logger.
	Log hclog.Logger
}

// FlagSet wraps flag.FlagSet with help rendering.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	return &FlagSet{FlagSet: f}
}

// Help renders the flag defaults as a help text block.
func (f *FlagSet) Help() string {
	var buf bytes.Buffer
	f.FlagSet.SetOutput(&buf)
	f.FlagSet.PrintDefaults()
	if buf.Len() == 0 {
		return ""
	}
	return "\n\nOptions:\n\n" + buf.String()
}
