package main

import (
	"os"

	"github.com/handoff-labs/handoff/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
