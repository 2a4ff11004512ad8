package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"github.com/vsinha/wareopt/pkg/infrastructure/logging"
	"github.com/vsinha/wareopt/pkg/interfaces/cli/commands"
	"github.com/vsinha/wareopt/pkg/interfaces/cli/config"
)

const usage = `wareopt - warehouse inventory and logistics optimizer

USAGE:
    wareopt <command> [OPTIONS]

COMMANDS:
    plan        Solve the configured scenarios and render each plan
    sweep       Solve a grid of coverage scenarios and compare them
    generate    Write a synthetic warehouse dataset
    schema      Print the JSON Schema of the config file

Run "wareopt <command> --help" for the options of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, log, err := newCommand(os.Args[1], os.Args[2:])
	if err == nil {
		err = cmd.Execute(logr.NewContext(ctx, log))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newCommand parses the flags of one subcommand and builds its logger
func newCommand(name string, args []string) (commands.Command, logr.Logger, error) {
	fs := pflag.NewFlagSet("wareopt "+name, pflag.ContinueOnError)
	help := fs.BoolP("help", "h", false, "Show help message")

	switch name {
	case "plan", "sweep":
		config.RegisterFlags(fs)
		if err := fs.Parse(args); err != nil {
			return nil, logr.Discard(), err
		}
		cfg, err := config.Load(fs)
		if err != nil {
			return nil, logr.Discard(), err
		}
		log, err := logging.NewLogger(cfg.Log.Verbosity, cfg.Log.Development)
		if err != nil {
			return nil, logr.Discard(), err
		}
		opts := commands.Options{Config: cfg, Help: *help, Out: os.Stdout}
		if name == "sweep" {
			return commands.NewSweepCommand(opts), log, nil
		}
		return commands.NewPlanCommand(opts), log, nil

	case "generate":
		var gc commands.GenerateConfig
		fs.IntVar(&gc.SKUs, "skus", 50, "Number of SKUs to generate")
		fs.IntVar(&gc.Facilities, "facilities", 3, "Number of facilities")
		fs.IntVar(&gc.Groups, "groups", 2, "Number of supplier groups")
		fs.IntVar(&gc.Periods, "periods", 6, "Periods on the horizon")
		fs.IntVar(&gc.SubPeriods, "sub-periods", 4, "Sub-periods per period")
		fs.Float64Var(&gc.DemandScale, "demand", 1.0, "Demand multiplier")
		fs.StringVarP(&gc.OutputDir, "output", "o", "", "Output directory for generated files")
		fs.BoolVar(&gc.Workbook, "xlsx", false, "Write one XLSX workbook instead of CSV tables")
		fs.Int64Var(&gc.Seed, "seed", 0, "Random seed for reproducible generation")
		fs.BoolVarP(&gc.Verbose, "verbose", "v", false, "Enable verbose output")
		if err := fs.Parse(args); err != nil {
			return nil, logr.Discard(), err
		}
		gc.Help = *help
		gc.Out = os.Stdout
		return commands.NewGenerateCommand(gc), logr.Discard(), nil

	case "schema":
		if err := fs.Parse(args); err != nil {
			return nil, logr.Discard(), err
		}
		return commands.NewSchemaCommand(os.Stdout, *help), logr.Discard(), nil

	case "help", "-h", "--help":
		fmt.Print(usage)
		os.Exit(0)
	}
	return nil, logr.Discard(), fmt.Errorf("unknown command %q\n\n%s", name, usage)
}
