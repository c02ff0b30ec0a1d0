// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package model implements Bayesian models
// for the differential abundance
// of the features of a count table,
// fitted with an external sampler.
package model

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/js-arias/micdiff/counts"
	"github.com/js-arias/micdiff/design"
	"github.com/js-arias/micdiff/fitparam"
	"github.com/js-arias/micdiff/stan"
)

// ErrNotFitted is returned
// when the posterior of a model is requested
// before the model has been fit.
var ErrNotFitted = errors.New("model: model has not been fit")

// ErrConfig is returned
// when a model is defined
// over invalid or incomplete inputs.
var ErrConfig = errors.New("model: invalid model definition")

// A Sampler runs a Bayesian sampler
// over a model program
// and returns the posterior draws of the run.
type Sampler interface {
	Sample(ctx context.Context, r Run) (*stan.Fit, error)
}

// A Run is a single execution of a sampler.
type Run struct {
	// Name is the name of the model program.
	Name string

	// Prefix is the name prefix
	// for the output of the run.
	// If empty,
	// the name of the program is used.
	Prefix string

	// Src is the source of the model program.
	Src []byte

	// Data is the input data of the run.
	Data stan.Data

	// Chains is the number of Markov chains.
	Chains int

	// Iter is the number of posterior draws
	// sampled per chain.
	Iter int

	// Seed is the seed of the sampler.
	Seed int64
}

var numCPU = 1

// SetCPU sets the number of process
// used for a fit
// run in parallel across features.
func SetCPU(cpu int) {
	if cpu < 1 {
		cpu = 1
	}
	numCPU = cpu
}

// A Param holds the definition of a model
// over a count table.
type Param struct {
	// Counts is the feature count table.
	Counts *counts.Matrix

	// Metadata is the per sample variable table.
	Metadata *design.Metadata

	// Formula is the model formula
	// used to build the design matrix.
	Formula string

	// FitParam is the sampling parameter collection.
	// If nil,
	// default values are used.
	FitParam *fitparam.FP
}

// A model holds the state shared
// by the differential abundance models:
// the count table,
// the design matrix,
// and the sampling parameters.
type model struct {
	counts *counts.Matrix
	x      [][]float64 // design matrix, samples x covariates
	covs   []string

	chains int
	iter   int
	seed   int64
	beta   float64 // stdev of the normal prior of the coefficients
	cauchy float64 // scale of the half-Cauchy prior of the dispersion
}

func newModel(p Param) (*model, error) {
	if p.Counts == nil || len(p.Counts.Features()) == 0 {
		return nil, fmt.Errorf("%w: undefined count table", ErrConfig)
	}
	if p.Metadata == nil {
		return nil, fmt.Errorf("%w: undefined metadata", ErrConfig)
	}
	if p.Formula == "" {
		return nil, fmt.Errorf("%w: undefined formula", ErrConfig)
	}

	samples := p.Counts.Samples()
	for i, t := range p.Counts.SampleTotals() {
		if t <= 0 {
			return nil, fmt.Errorf("%w: sample %q: zero total count", ErrConfig, samples[i])
		}
	}

	// design matrix over the samples of the count table,
	// in count table order
	md := design.NewMetadata()
	for _, s := range samples {
		for _, c := range p.Metadata.Columns() {
			md.Add(s, c, p.Metadata.Value(s, c))
		}
	}
	dm, covs, err := design.Matrix(md, p.Formula)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	x := make([][]float64, len(samples))
	for i := range x {
		row := make([]float64, len(covs))
		for j := range row {
			row[j] = dm.At(i, j)
		}
		x[i] = row
	}

	fp := p.FitParam
	if fp == nil {
		fp = fitparam.New("")
	}
	return &model{
		counts: p.Counts,
		x:      x,
		covs:   covs,
		chains: fp.Chains(),
		iter:   fp.Iter(),
		seed:   fp.Seed(),
		beta:   fp.BetaPrior(),
		cauchy: fp.CauchyScale(),
	}, nil
}

// CountMatrix returns the observed counts
// as a sample by feature matrix
// of rounded counts.
func (m *model) countMatrix() [][]int64 {
	features := m.counts.Features()
	samples := m.counts.Samples()

	y := make([][]int64, len(samples))
	for i, s := range samples {
		row := make([]int64, len(features))
		for j, f := range features {
			row[j] = int64(math.Round(m.counts.Counts(f, s)))
		}
		y[i] = row
	}
	return y
}

// FeatureCounts returns the observed counts
// of a single feature,
// rounded,
// across all samples.
func (m *model) featureCounts(feature string) []int64 {
	samples := m.counts.Samples()
	y := make([]int64, len(samples))
	for i, s := range samples {
		y[i] = int64(math.Round(m.counts.Counts(feature, s)))
	}
	return y
}

// Depth returns the log of the total count
// of each sample.
func (m *model) depth() []float64 {
	tot := m.counts.SampleTotals()
	d := make([]float64, len(tot))
	for i, t := range tot {
		d[i] = math.Log(t)
	}
	return d
}

// Observed returns the observed counts
// as a flat sample by feature matrix
// in row-major order.
func (m *model) observed() []float64 {
	features := m.counts.Features()
	samples := m.counts.Samples()

	obs := make([]float64, 0, len(samples)*len(features))
	for _, s := range samples {
		for _, f := range features {
			obs = append(obs, m.counts.Counts(f, s))
		}
	}
	return obs
}
