package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rvhart/hart/internal/cli"
	"github.com/rvhart/hart/internal/config"
	"github.com/rvhart/hart/internal/hart"
	"github.com/rvhart/hart/internal/hostsim"
	"github.com/rvhart/hart/internal/log"
)

// Run is the "run" subcommand: load an image and drive the reference
// Host/CSR bank's fetch loop with it. The loop does not end when the hart
// halts; it returns only when its context is cancelled or a step fails, and
// the command prints no final state. Grounded on internal/cli/cmd's
// former demo command for the FlagSet/Usage/Run shape, generalized from a
// one-program demo to an arbitrary loaded image.
func Run() cli.Command {
	return new(runCmd)
}

type runCmd struct {
	configPath string
	imagePath  string
	hexFormat  bool
}

func (runCmd) Description() string {
	return "run a binary image against the reference hart"
}

func (runCmd) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
run [ -config path ] [ -hex ] <image>

Load <image> (raw: at the hart's configured reset address; -hex: at each
record's address) and run the hart's fetch loop. The loop does not stop
when the hart halts.`)

	return err
}

func (r *runCmd) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)

	fs.StringVar(&r.configPath, "config", "hart.yml", "path to hart configuration")
	fs.BoolVar(&r.hexFormat, "hex", false, "image is Intel-Hex encoded, not raw binary")

	return fs
}

func (r *runCmd) Run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) int {
	if len(args) != 1 {
		fmt.Fprintln(out, "run: expected exactly one image argument")
		return 1
	}

	r.imagePath = args[0]

	cfg, err := config.Load(r.configPath)
	if err != nil {
		logger.Error(err.Error())
		return 2
	}

	machine := hostsim.NewMachine(cfg.MemorySize)
	loader := hostsim.NewLoader(machine)

	data, err := os.ReadFile(r.imagePath)
	if err != nil {
		logger.Error(err.Error())
		return 2
	}

	if r.hexFormat {
		if _, err := loader.LoadHex(data); err != nil {
			logger.Error(err.Error())
			return 2
		}
	} else if err := loader.LoadEntry(cfg.ResetAddr, data); err != nil {
		logger.Error(err.Error())
		return 2
	}

	bank := hostsim.NewBank(cfg.ISABits().Has(hart.ISASupervisor), cfg.ISABits().Has(hart.ISAUser))
	h := hart.NewHart(cfg.ToHartConfig(), machine, bank)

	logger.Info("starting hart", "reset_addr", fmt.Sprintf("%#x", cfg.ResetAddr))

	err = machine.Run(ctx, h, func() error {
		return nil // the decoder/executor lives outside this module's scope
	})

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Info("run stopped", "reason", err.Error())
		return 0
	case err != nil:
		logger.Error(err.Error())
		return 2
	default:
		return 0
	}
}
