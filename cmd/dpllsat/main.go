package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	dpll "github.com/taiocean1213/cnf-dpll-2wl"
)

const (
	exitUsage         = 2
	exitIndeterminate = 3
)

func main() {
	app := cli.NewApp()
	app.Name = "dpllsat"
	app.Usage = "a DPLL SAT solver with two-watched-literal propagation"
	app.ArgsUsage = "<input.cnf>"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "Log solver diagnostics and statistics",
		},
		cli.IntFlag{
			Name:  "cpu-time-limit",
			Usage: "Limit on solve time allowed in seconds",
			Value: -1,
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		// cli prints ExitErrors itself; anything else lands here.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if c.Bool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	path := c.Args().First()
	if path == "" {
		cli.ShowAppHelp(c)
		return cli.NewExitError("input file is required", exitUsage)
	}

	f, err := os.Open(path)
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "open input"), 1)
	}
	defer f.Close()

	problem, err := dpll.ParseDIMACS(f)
	if err != nil {
		return cli.NewExitError(errors.Wrapf(err, "read %s", path), 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if limit := c.Int("cpu-time-limit"); limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(limit)*time.Second)
		defer cancel()
	}

	solver, err := dpll.NewFromProblem(problem, &dpll.Options{Logger: log})
	if err != nil {
		return cli.NewExitError(errors.Wrapf(err, "load %s", path), 1)
	}
	log.Debugf("loaded %d variables, %d clauses", solver.NumVars(), solver.NumClauses())

	start := time.Now()
	status := solver.Solve(ctx)
	if c.Bool("verbose") {
		log.WithFields(solver.Statistics.Fields()).
			WithField("elapsed", time.Since(start)).
			Info("solve finished")
	}

	switch status {
	case dpll.LitBoolTrue:
		fmt.Println("SAT")
		fmt.Println(formatModel(solver.Model()))
	case dpll.LitBoolFalse:
		fmt.Println("UNSAT")
	default:
		fmt.Println("INDETERMINATE")
		return cli.NewExitError("solve interrupted before completion", exitIndeterminate)
	}
	return nil
}

func formatModel(model []int) string {
	parts := make([]string, len(model))
	for i, p := range model {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, " ")
}
