package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rvhart/hart/internal/cli"
	"github.com/rvhart/hart/internal/config"
	"github.com/rvhart/hart/internal/hart"
	"github.com/rvhart/hart/internal/hostsim"
	"github.com/rvhart/hart/internal/log"
	"github.com/rvhart/hart/internal/tty"
)

// Ports is the "ports" subcommand: run a hart while letting the operator
// drive its external signal ports interactively from the keyboard (haltreq,
// resume, nmi, reset, quit). Grounded on the former demo command's
// goroutine shape, replacing its display/keyboard devices with
// tty.ConsoleContext's port bindings.
func Ports() cli.Command {
	return new(portsCmd)
}

type portsCmd struct {
	configPath string
}

func (portsCmd) Description() string {
	return "run a hart with interactive port control (h=halt c=resume n=nmi r=reset q=quit)"
}

func (portsCmd) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
ports [ -config path ]

Run the reference hart and drive its external signal ports from the keyboard.`)

	return err
}

func (p *portsCmd) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("ports", flag.ExitOnError)
	fs.StringVar(&p.configPath, "config", "hart.yml", "path to hart configuration")

	return fs
}

func (p *portsCmd) Run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) int {
	cfg, err := config.Load(p.configPath)
	if err != nil {
		logger.Error(err.Error())
		return 2
	}

	machine := hostsim.NewMachine(cfg.MemorySize)
	bank := hostsim.NewBank(cfg.ISABits().Has(hart.ISASupervisor), cfg.ISABits().Has(hart.ISAUser))
	h := hart.NewHart(cfg.ToHartConfig(), machine, bank)

	ctx, console, cancel := tty.ConsoleContext(ctx, h, tty.DefaultKeyBindings())
	defer cancel()

	if err := context.Cause(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ports: no interactive terminal available:", err)
		return 1
	}

	fmt.Fprintln(console.Writer(), "h=halt c=resume n=nmi r=reset q=quit")

	err = machine.Run(ctx, h, func() error { return nil })

	if err != nil && ctx.Err() == nil {
		logger.Error(err.Error())
		return 2
	}

	return 0
}
