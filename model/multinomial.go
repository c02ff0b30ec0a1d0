// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package model

import (
	"context"
	"fmt"

	"github.com/js-arias/micdiff/inference"
	"github.com/js-arias/micdiff/stan"
)

// A Multinomial is a differential abundance model
// in which the counts of each sample
// are drawn from a multinomial distribution
// whose feature probabilities
// are a softmax transform
// of a linear function of the sample covariates.
//
// Coefficients are sampled
// in additive log-ratio coordinates,
// using the first feature of the count table
// as the reference,
// and reported in centered log-ratio coordinates.
type Multinomial struct {
	m *model

	fit *stan.Fit
}

// NewMultinomial creates a multinomial model
// from a count table,
// sample metadata,
// and a model formula.
func NewMultinomial(p Param) (*Multinomial, error) {
	m, err := newModel(p)
	if err != nil {
		return nil, err
	}
	if len(m.counts.Features()) < 2 {
		return nil, fmt.Errorf("%w: count table with a single feature", ErrConfig)
	}
	return &Multinomial{m: m}, nil
}

// Source returns the Stan source of the model program.
func (mn *Multinomial) Source() []byte {
	return append([]byte{}, multinomialSrc...)
}

// Fit samples the posterior of the model
// in a single sampler run.
func (mn *Multinomial) Fit(ctx context.Context, s Sampler) error {
	m := mn.m
	d := stan.Data{
		"N":   len(m.counts.Samples()),
		"D":   len(m.counts.Features()),
		"p":   len(m.covs),
		"x":   m.x,
		"y":   m.countMatrix(),
		"B_p": m.beta,
	}

	f, err := s.Sample(ctx, Run{
		Name:   "multinomial",
		Src:    mn.Source(),
		Data:   d,
		Chains: m.chains,
		Iter:   m.iter,
		Seed:   m.seed,
	})
	if err != nil {
		return fmt.Errorf("model multinomial: %v", err)
	}
	mn.fit = f
	return nil
}

// ToInference labels the posterior draws
// of a fitted model
// as an inference data value,
// with the model coefficients
// in centered log-ratio coordinates,
// the posterior predictive and log likelihood draws,
// and the observed counts.
func (mn *Multinomial) ToInference() (*inference.Data, error) {
	if mn.fit == nil {
		return nil, ErrNotFitted
	}

	m := mn.m
	features := m.counts.Features()
	samples := m.counts.Samples()

	p := inference.Param{
		Vars: []string{"beta"},
		Dims: map[string][]string{
			"beta": {"covariate", "feature"},
		},
		Coords: map[string][]string{
			"covariate": m.covs,
			"feature":   features,
		},
		ALRVars:             []string{"beta"},
		PosteriorPredictive: "y_predict",
		LogLikelihood:       "log_lik",
		SampleNames:         samples,
	}
	d, err := inference.FromSingleFit(mn.fit, p)
	if err != nil {
		return nil, err
	}

	if err := d.SetObserved(m.observed(), samples, features); err != nil {
		return nil, err
	}
	return d, nil
}
