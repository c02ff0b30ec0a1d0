// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package ppc implements a command to draw
// a posterior predictive check of a fitted model.
package ppc

import (
	"github.com/js-arias/command"
	"github.com/js-arias/micdiff/diagplot"
	"github.com/js-arias/micdiff/project"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: "ppc [-o|--output <file>] <project-file>",
	Short: "draw a posterior predictive check",
	Long: `
Command ppc reads the inference data of a MicDiff project and draws a
posterior predictive check: the observed counts, sorted in ascending order,
over the posterior predictive mean and 95% credible interval of each entry
of the count table. The title of the figure reports the percentage of
observations that fall inside the credible interval; in a well calibrated
model, that percentage should be close to 95%.

The argument of the command is the name of the project file.

The figure is saved as 'ppc.png'; use the flag --output, or -o, to define a
different file name. The image format is taken from the file extension.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "ppc.png", "")
	c.Flags().StringVar(&output, "o", "ppc.png", "")
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

	pt, err := diagplot.PPC(d)
	if err != nil {
		return err
	}
	return pt.Save(6*vg.Inch, 4*vg.Inch, output)
}
