// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mult implements a command to fit
// a multinomial model.
package mult

import (
	"context"
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/micdiff/inference"
	"github.com/js-arias/micdiff/model"
	"github.com/js-arias/micdiff/project"
)

var Command = &command.Command{
	Usage: `mult --formula <formula> [--cmdstan <path>]
	[--dir <path>] [-o|--output <file>]
	[--chains <value>] [--iter <value>] [--seed <value>]
	<project-file>`,
	Short: "fit a multinomial model",
	Long: `
Command mult fits a multinomial model to the count table of a MicDiff
project, sampling the posterior distribution of the model coefficients of
each microbial feature with an MCMC sampler. In a multinomial model the
counts of a sample are modeled jointly, the total count of each sample is
fixed, and only the relative abundances of the features are modeled.

The argument of the command is the name of the project file.

The flag --formula is required and defines the model of the expected log
abundances. The formula is a sum of metadata variables, for example
"diet+age". Variables in which all values are numbers are used as numeric
covariates; any other variable is expanded into indicator covariates, one
per level, using the first level, in alphabetical order, as the reference.
Use C(<variable>) to force a numeric variable to be treated as categorical.
An intercept is always included.

The sampler is CmdStan, and the path of the CmdStan installation must be
defined, either with the flag --cmdstan, or with the CMDSTAN environment
variable. The model binary and its output files are stored in the directory
defined with the flag --dir; if not given, a temporary directory will be
used.

The number of chains, the draws per chain, and the random seed are taken
from the sampling parameters of the project, and can be changed with the
flags --chains, --iter, and --seed.

The posterior draws are stored in an inference data file, defined with the
flag --output, or -o; if not given, the file 'inference.tab' will be used.
The file is registered in the project, replacing any previous inference
data.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var formula string
var cmdStan string
var runDir string
var output string
var chains int
var iter int
var seed int64

func setFlags(c *command.Command) {
	c.Flags().StringVar(&formula, "formula", "", "")
	c.Flags().StringVar(&cmdStan, "cmdstan", "", "")
	c.Flags().StringVar(&runDir, "dir", "", "")
	c.Flags().StringVar(&output, "output", "inference.tab", "")
	c.Flags().StringVar(&output, "o", "inference.tab", "")
	c.Flags().IntVar(&chains, "chains", 0, "")
	c.Flags().IntVar(&iter, "iter", 0, "")
	c.Flags().Int64Var(&seed, "seed", -1, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if formula == "" {
		return c.UsageError("flag --formula undefined")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	param, err := readParam(p)
	if err != nil {
		return err
	}

	m, err := model.NewMultinomial(param)
	if err != nil {
		return err
	}

	s, cleanup, err := sampler(c)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := m.Fit(context.Background(), s); err != nil {
		return err
	}

	d, err := m.ToInference()
	if err != nil {
		return err
	}
	if err := writeInference(output, d); err != nil {
		return err
	}

	if p.Path(project.Inference) != output {
		p.Add(project.Inference, output)
		if err := p.Write(); err != nil {
			return err
		}
	}
	return nil
}

// ReadParam builds the model definition
// from the datasets of a project,
// overriding the sampling parameters
// with the command flags.
func readParam(p *project.Project) (model.Param, error) {
	m, err := p.Counts()
	if err != nil {
		return model.Param{}, err
	}
	md, err := p.Metadata()
	if err != nil {
		return model.Param{}, err
	}
	fp, err := p.FitParam()
	if err != nil {
		return model.Param{}, err
	}

	if chains > 0 {
		if err := fp.SetChains(chains); err != nil {
			return model.Param{}, err
		}
	}
	if iter > 0 {
		if err := fp.SetIter(iter); err != nil {
			return model.Param{}, err
		}
	}
	if seed >= 0 {
		fp.SetSeed(seed)
	}

	return model.Param{
		Counts:   m,
		Metadata: md,
		Formula:  formula,
		FitParam: fp,
	}, nil
}

// Sampler creates a CmdStan sampler
// in the run directory.
// The cleanup function removes the directory
// if it was created as a temporary directory.
func sampler(c *command.Command) (*model.CmdStan, func(), error) {
	path := cmdStan
	if path == "" {
		path = os.Getenv("CMDSTAN")
	}
	if path == "" {
		return nil, nil, c.UsageError("flag --cmdstan undefined")
	}

	if runDir != "" {
		if err := os.MkdirAll(runDir, 0755); err != nil {
			return nil, nil, err
		}
		return model.NewCmdStan(path, runDir), func() {}, nil
	}

	dir, err := os.MkdirTemp("", "micdiff-")
	if err != nil {
		return nil, nil, err
	}
	return model.NewCmdStan(path, dir), func() { os.RemoveAll(dir) }, nil
}

func writeInference(name string, d *inference.Data) (err error) {
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

	if err := d.TSV(f); err != nil {
		return fmt.Errorf("while writing %q: %v", name, err)
	}
	return nil
}
