// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sim implements a command to simulate
// a count table with known coefficients.
package sim

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/micdiff/counts"
	"github.com/js-arias/micdiff/design"
	"gonum.org/v1/gonum/stat/distuv"
)

var Command = &command.Command{
	Usage: `sim [-o|--output <file-prefix>]
	[--features <number>] [--samples <number>]
	[--depth <number>] [--phi <value>] [--effect <value>]
	[--seed <value>]`,
	Short: "simulate a count table",
	Long: `
Command sim creates a random count table with known coefficients, useful to
validate an analysis pipeline by fitting a model to data in which the true
differentials are known.

Samples are assigned alternately to the "control" and "treatment" levels of
a metadata variable called "group". For each feature, an intercept and a
treatment effect are drawn from a normal distribution, and then centered
across features, so the true coefficients are expressed in centered log
ratio coordinates. Counts are drawn from a negative binomial distribution
in which the expected count is the sequencing depth of the sample times the
exponent of the linear model of the feature.

By default, the simulation has 50 features and 20 samples, the sequencing
depth is 10000 reads per sample, the dispersion of each feature is 1.0, and
the standard deviation of the coefficients is 1.0. Use the flags
--features, --samples, --depth, --phi, and --effect to change these values.

The flag --seed sets the seed of the pseudo-random number generator; with
the same seed, the command will always produce the same data.

Three tab-delimited files will be created, with the prefix defined with the
flag --output, or -o ("sim" by default): the count table in
'<prefix>-counts.tab', the sample metadata in '<prefix>-metadata.tab', and
the true coefficients in '<prefix>-beta.tab'.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var numFeatures int
var numSamples int
var depth int
var phi float64
var effect float64
var seed int64

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "sim", "")
	c.Flags().StringVar(&output, "o", "sim", "")
	c.Flags().IntVar(&numFeatures, "features", 50, "")
	c.Flags().IntVar(&numSamples, "samples", 20, "")
	c.Flags().IntVar(&depth, "depth", 10000, "")
	c.Flags().Float64Var(&phi, "phi", 1, "")
	c.Flags().Float64Var(&effect, "effect", 1, "")
	c.Flags().Int64Var(&seed, "seed", 42, "")
}

func run(c *command.Command, args []string) error {
	if numFeatures < 2 {
		return c.UsageError("flag --features: expecting two or more features")
	}
	if numSamples < 2 {
		return c.UsageError("flag --samples: expecting two or more samples")
	}
	if depth < 1 {
		return c.UsageError("flag --depth: expecting a positive depth")
	}
	if phi <= 0 {
		return c.UsageError("flag --phi: expecting a positive dispersion")
	}
	if effect <= 0 {
		return c.UsageError("flag --effect: expecting a positive deviation")
	}

	src := rand.NewPCG(uint64(seed), uint64(seed))

	// true coefficients,
	// centered across features
	norm := distuv.Normal{Mu: 0, Sigma: effect, Src: src}
	beta := make([][]float64, 2)
	for cv := range beta {
		beta[cv] = make([]float64, numFeatures)
		var sum float64
		for f := range beta[cv] {
			beta[cv][f] = norm.Rand()
			sum += beta[cv][f]
		}
		mean := sum / float64(numFeatures)
		for f := range beta[cv] {
			beta[cv][f] -= mean
		}
	}

	md := design.NewMetadata()
	groups := make([]float64, numSamples)
	for s := 0; s < numSamples; s++ {
		g := "control"
		if s%2 == 1 {
			g = "treatment"
			groups[s] = 1
		}
		md.Add(sampleName(s), "group", g)
	}

	m := counts.New()
	for s := 0; s < numSamples; s++ {
		for f := 0; f < numFeatures; f++ {
			lam := math.Log(float64(depth)) + beta[0][f] + groups[s]*beta[1][f]
			mu := math.Exp(lam)

			// negative binomial
			// as a gamma-poisson mixture
			g := distuv.Gamma{Alpha: phi, Beta: phi / mu, Src: src}
			y := distuv.Poisson{Lambda: g.Rand(), Src: src}.Rand()
			if y == 0 {
				continue
			}
			m.Add(featureName(f), sampleName(s), y)
		}
	}

	if err := writeCounts(m); err != nil {
		return err
	}
	if err := writeMetadata(md); err != nil {
		return err
	}
	if err := writeBeta(beta); err != nil {
		return err
	}
	return nil
}

func featureName(f int) string {
	return fmt.Sprintf("otu%d", f+1)
}

func sampleName(s int) string {
	return fmt.Sprintf("sample%d", s+1)
}

func writeCounts(m *counts.Matrix) (err error) {
	name := fmt.Sprintf("%s-counts.tab", output)
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

	if err := m.TSV(f); err != nil {
		return fmt.Errorf("while writing %q: %v", name, err)
	}
	return nil
}

func writeMetadata(md *design.Metadata) (err error) {
	name := fmt.Sprintf("%s-metadata.tab", output)
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

	if err := md.TSV(f); err != nil {
		return fmt.Errorf("while writing %q: %v", name, err)
	}
	return nil
}

func writeBeta(beta [][]float64) (err error) {
	name := fmt.Sprintf("%s-beta.tab", output)
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

	fmt.Fprintf(f, "# simulated coefficients\n")
	fmt.Fprintf(f, "# seed: %d\n", seed)
	fmt.Fprintf(f, "# date: %s\n", time.Now().Format(time.RFC3339))

	tsv := csv.NewWriter(f)
	tsv.Comma = '\t'
	tsv.UseCRLF = true
	if err := tsv.Write([]string{"covariate", "feature", "beta"}); err != nil {
		return fmt.Errorf("unable to write header to %q: %v", name, err)
	}

	covs := []string{"Intercept", "group[T.treatment]"}
	for cv, cov := range covs {
		for f, b := range beta[cv] {
			row := []string{
				cov,
				featureName(f),
				strconv.FormatFloat(b, 'f', 6, 64),
			}
			if err := tsv.Write(row); err != nil {
				return fmt.Errorf("unable to write data to %q: %v", name, err)
			}
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("unable to write data to %q: %v", name, err)
	}
	return nil
}
