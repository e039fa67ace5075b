// cmd/hartsim is the command-line interface to hartsim, a trap-and-interrupt
// engine for a RISC-V hart.
package main

import (
	"context"
	"os"

	"github.com/rvhart/hart/internal/cli"
	"github.com/rvhart/hart/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Run(),
	cmd.Ports(),
}

// Entry point.
func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
