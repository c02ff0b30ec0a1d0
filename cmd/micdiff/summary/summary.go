// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package summary implements a command to print
// summary statistics of the posterior draws
// of a fitted model.
package summary

import (
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/micdiff/inference"
	"github.com/js-arias/micdiff/project"
)

var Command = &command.Command{
	Usage: `summary [--group <group>] [-o|--output <file>]
	<project-file>`,
	Short: "print summary statistics of a fitted model",
	Long: `
Command summary reads the inference data of a MicDiff project and prints a
table with summary statistics of each model parameter into the standard
output. For every coordinate of a parameter, it reports the posterior mean,
the standard deviation, the 2.5%, 50%, and 97.5% quantiles, and the split
R-hat convergence statistic.

The argument of the command is the name of the project file.

By default, the summary is calculated for the model parameters. Use the
flag --group to summarize a different group of the inference data. Valid
values are:

	posterior	the model parameters (the default)
	posterior_predictive	the posterior predictions
	log_likelihood	the pointwise log likelihoods

If the flag --output, or -o, is defined, the table will be written to the
indicated file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var groupFlag string
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&groupFlag, "group", "posterior", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	d, err := p.Inference()
	if err != nil {
		return err
	}

	var ds *inference.Dataset
	switch groupFlag {
	case "posterior":
		ds = d.Posterior
	case "posterior_predictive":
		ds = d.PosteriorPredictive
	case "log_likelihood":
		ds = d.LogLikelihood
	default:
		msg := fmt.Sprintf("flag --group: unknown value %q", groupFlag)
		return c.UsageError(msg)
	}
	if ds == nil || ds.Len() == 0 {
		return fmt.Errorf("inference data without a %s group", groupFlag)
	}

	if output == "" {
		return inference.Summary(c.Stdout(), ds)
	}
	return writeSummary(output, ds)
}

func writeSummary(name string, ds *inference.Dataset) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := inference.Summary(f, ds); err != nil {
		return fmt.Errorf("while writing %q: %v", name, err)
	}
	return nil
}
