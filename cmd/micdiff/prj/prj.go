// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package prj implements a command to print
// the basic information of a project.
package prj

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/micdiff/counts"
	"github.com/js-arias/micdiff/design"
	"github.com/js-arias/micdiff/fitparam"
	"github.com/js-arias/micdiff/inference"
	"github.com/js-arias/micdiff/project"
)

var Command = &command.Command{
	Usage: "prj <project-file>",
	Short: "print information about a project",
	Long: `
Command prj reads a MicDiff project and prints the information of the
different project elements into the standard output.

The argument of the command is the name of the project file.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	cF := p.Path(project.Counts)
	if cF != "" {
		if err := readCounts(c.Stdout(), cF); err != nil {
			return err
		}
	}

	mF := p.Path(project.Samples)
	if mF != "" {
		if err := readMetadata(c.Stdout(), mF); err != nil {
			return err
		}
	}

	fpF := p.Path(project.FitParam)
	if fpF != "" {
		if err := readFitParam(c.Stdout(), fpF); err != nil {
			return err
		}
	}

	iF := p.Path(project.Inference)
	if iF != "" {
		if err := readInference(c.Stdout(), iF); err != nil {
			return err
		}
	}

	return nil
}

func readCounts(w io.Writer, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	m := counts.New()
	if err := m.ReadTSV(f); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}

	var reads float64
	for _, t := range m.SampleTotals() {
		reads += t
	}

	fmt.Fprintf(w, "Count table:\n")
	fmt.Fprintf(w, "\tfile: %s\n", name)
	fmt.Fprintf(w, "\tfeatures: %d\n", len(m.Features()))
	fmt.Fprintf(w, "\tsamples: %d\n", len(m.Samples()))
	fmt.Fprintf(w, "\ttotal reads: %.0f\n", reads)
	fmt.Fprintf(w, "\n")

	return nil
}

func readMetadata(w io.Writer, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	md := design.NewMetadata()
	if err := md.ReadTSV(f); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}

	fmt.Fprintf(w, "Sample metadata:\n")
	fmt.Fprintf(w, "\tfile: %s\n", name)
	fmt.Fprintf(w, "\tsamples: %d\n", len(md.Samples()))
	fmt.Fprintf(w, "\tvariables: %s\n", strings.Join(md.Columns(), ", "))
	fmt.Fprintf(w, "\n")

	return nil
}

func readFitParam(w io.Writer, name string) error {
	fp, err := fitparam.Read(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Sampling parameters:\n")
	fmt.Fprintf(w, "\tfile: %s\n", name)
	fmt.Fprintf(w, "\tchains: %d\n", fp.Chains())
	fmt.Fprintf(w, "\tdraws per chain: %d\n", fp.Iter())
	fmt.Fprintf(w, "\tseed: %d\n", fp.Seed())
	fmt.Fprintf(w, "\n")

	return nil
}

func readInference(w io.Writer, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	d, err := inference.ReadTSV(f)
	if err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}

	fmt.Fprintf(w, "Inference data:\n")
	fmt.Fprintf(w, "\tfile: %s\n", name)

	if d.Posterior != nil && d.Posterior.Len() > 0 {
		vars := d.Posterior.Vars()
		a := d.Posterior.Array(vars[0])
		sh := a.Shape()
		fmt.Fprintf(w, "\tchains: %d\n", sh[0])
		fmt.Fprintf(w, "\tdraws per chain: %d\n", sh[1])
		fmt.Fprintf(w, "\tparameters: %s\n", strings.Join(vars, ", "))

		if p := slices.Index(a.Dims(), "feature"); p >= 0 {
			fmt.Fprintf(w, "\tfeatures: %d\n", sh[p])
		}
	}
	if d.PosteriorPredictive != nil && d.PosteriorPredictive.Len() > 0 {
		fmt.Fprintf(w, "\tposterior predictive: %s\n", strings.Join(d.PosteriorPredictive.Vars(), ", "))
	}
	if d.LogLikelihood != nil && d.LogLikelihood.Len() > 0 {
		fmt.Fprintf(w, "\tlog likelihood: %s\n", strings.Join(d.LogLikelihood.Vars(), ", "))
	}
	if d.ObservedData != nil && d.ObservedData.Len() > 0 {
		fmt.Fprintf(w, "\tobserved data: %s\n", strings.Join(d.ObservedData.Vars(), ", "))
	}
	fmt.Fprintf(w, "\n")

	return nil
}
