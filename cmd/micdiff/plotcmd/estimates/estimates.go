// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package estimates implements a command to draw
// the sorted estimates of a model parameter.
package estimates

import (
	"fmt"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/micdiff/diagplot"
	"github.com/js-arias/micdiff/project"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `estimates [--param <parameter>]
	[--sel <dimension=coordinate>[,...]] [--std <value>]
	[-o|--output <file>] <project-file>`,
	Short: "draw sorted estimates of a model parameter",
	Long: `
Command estimates reads the inference data of a MicDiff project and draws
the posterior mean of each coordinate of a model parameter, sorted by mean,
with an error bar around each mean.

The argument of the command is the name of the project file.

By default, the parameter "beta" will be drawn. Use the flag --param to
draw a different parameter.

A parameter with more than one dimension must be reduced to a single
dimension before drawing. Use the flag --sel with one or more
comma-separated pairs of the form <dimension>=<coordinate> to fix the given
dimensions; for example, --sel "covariate=diet[T.herbivore]" draws the
coefficients of the herbivore diet on each feature.

By default, the error bars are one standard deviation of the posterior
draws. Use the flag --std to define a different number of standard
deviations.

The figure is saved as 'estimates.png'; use the flag --output, or -o, to
define a different file name. The image format is taken from the file
extension.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var paramFlag string
var selFlag string
var numStd float64
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&paramFlag, "param", "beta", "")
	c.Flags().StringVar(&selFlag, "sel", "", "")
	c.Flags().Float64Var(&numStd, "std", 1, "")
	c.Flags().StringVar(&output, "output", "estimates.png", "")
	c.Flags().StringVar(&output, "o", "estimates.png", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	sel, err := parseSel(selFlag)
	if err != nil {
		return c.UsageError(err.Error())
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	d, err := p.Inference()
	if err != nil {
		return err
	}

	pt, err := diagplot.Estimates(d, paramFlag, sel, numStd)
	if err != nil {
		return err
	}
	return pt.Save(6*vg.Inch, 4*vg.Inch, output)
}

// ParseSel parses a coordinate selection flag,
// one or more comma-separated pairs
// of the form <dimension>=<coordinate>.
func parseSel(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}

	sel := make(map[string]string)
	for _, f := range strings.Split(s, ",") {
		kv := strings.SplitN(f, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("flag --sel: invalid selection %q", f)
		}
		dim := strings.TrimSpace(kv[0])
		coord := strings.TrimSpace(kv[1])
		if dim == "" || coord == "" {
			return nil, fmt.Errorf("flag --sel: invalid selection %q", f)
		}
		sel[dim] = coord
	}
	return sel, nil
}
