// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package param implements a command to manage
// the sampling parameters of a project.
package param

import (
	"fmt"
	"io"

	"github.com/js-arias/command"
	"github.com/js-arias/micdiff/fitparam"
	"github.com/js-arias/micdiff/project"
)

var Command = &command.Command{
	Usage: `param [--add <param-file>] [--file <file-name>]
	[--chains <value>] [--iter <value>] [--seed <value>]
	[--betaprior <value>] [--cauchyscale <value>]
	<project-file>`,
	Short: "manage sampling parameters",
	Long: `
Command param manages the parameters used when sampling the posterior
distribution of a model defined for a MicDiff project.

The argument of the command is the name of the project file.

By default, the command will print the currently defined parameters.

If the flag --add is defined, it will use the indicated file for the sampling
parameters.

By default, any change on the parameters will be stored in the current
parameters file. If no file is defined for the project, the file
'fit-params.tab' will be created. Use the flag --file to define a different
parameters file.

To set the number of MCMC chains use the flag --chains; the default value for
a project is 4. To set the number of draws per chain use the flag --iter; the
same number of draws will be used as warmup, and the default value is 2000.
The flag --seed sets the seed of the pseudo-random number generator used by
the sampler; the default value is 42.

The flag --betaprior sets the standard deviation of the normal prior of the
model coefficients, 5.0 by default. The flag --cauchyscale sets the scale of
the half-Cauchy prior of the dispersions in a negative binomial model, 5.0 by
default.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var addFile string
var paramFile string
var chains int
var iter int
var seed int64
var betaPrior float64
var cauchyScale float64

func setFlags(c *command.Command) {
	c.Flags().StringVar(&addFile, "add", "", "")
	c.Flags().StringVar(&paramFile, "file", "", "")
	c.Flags().IntVar(&chains, "chains", 0, "")
	c.Flags().IntVar(&iter, "iter", 0, "")
	c.Flags().Int64Var(&seed, "seed", -1, "")
	c.Flags().Float64Var(&betaPrior, "betaprior", 0, "")
	c.Flags().Float64Var(&cauchyScale, "cauchyscale", 0, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	fp, err := p.FitParam()
	if err != nil {
		return err
	}

	if addFile != "" {
		if _, err := fitparam.Read(addFile); err != nil {
			return err
		}
		p.Add(project.FitParam, addFile)
		if err := p.Write(); err != nil {
			return err
		}
		return nil
	}

	if paramFile != "" {
		fp.SetName(paramFile)
	}

	ed := false
	if chains > 0 {
		if err := fp.SetChains(chains); err != nil {
			return err
		}
		ed = true
	}
	if iter > 0 {
		if err := fp.SetIter(iter); err != nil {
			return err
		}
		ed = true
	}
	if seed >= 0 {
		fp.SetSeed(seed)
		ed = true
	}
	if betaPrior > 0 {
		if err := fp.SetBetaPrior(betaPrior); err != nil {
			return err
		}
		ed = true
	}
	if cauchyScale > 0 {
		if err := fp.SetCauchyScale(cauchyScale); err != nil {
			return err
		}
		ed = true
	}

	if ed && fp.Name() == "" {
		fp.SetName("fit-params.tab")
	}

	if fp.Name() != "" && p.Path(project.FitParam) != fp.Name() {
		if err := fp.Write(); err != nil {
			return err
		}
		p.Add(project.FitParam, fp.Name())
		if err := p.Write(); err != nil {
			return err
		}
		return nil
	}
	if ed {
		if err := fp.Write(); err != nil {
			return err
		}
		return nil
	}

	printParams(c.Stdout(), fp)
	return nil
}

func printParams(w io.Writer, fp *fitparam.FP) {
	fmt.Fprintf(w, "file:            %s\n", fp.Name())
	fmt.Fprintf(w, "chains:          %d\n", fp.Chains())
	fmt.Fprintf(w, "draws per chain: %d\n", fp.Iter())
	fmt.Fprintf(w, "seed:            %d\n", fp.Seed())
	fmt.Fprintf(w, "beta prior:      %.6f\n", fp.BetaPrior())
	fmt.Fprintf(w, "cauchy scale:    %.6f\n", fp.CauchyScale())
}
