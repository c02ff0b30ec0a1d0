// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/js-arias/micdiff/inference"
	"github.com/js-arias/micdiff/stan"
)

// A NegativeBinomial is a differential abundance model
// in which the count of each feature in a sample
// is drawn from a negative binomial distribution
// whose log mean is the log depth of the sample
// plus a linear function of the sample covariates,
// with a per feature dispersion.
//
// Coefficients are sampled
// in additive log-ratio coordinates,
// using the first feature of the count table
// as the reference,
// and reported in centered log-ratio coordinates.
type NegativeBinomial struct {
	m *model

	fit  *stan.Fit
	fits []*stan.Fit
}

// NewNegativeBinomial creates a negative binomial model
// from a count table,
// sample metadata,
// and a model formula.
func NewNegativeBinomial(p Param) (*NegativeBinomial, error) {
	m, err := newModel(p)
	if err != nil {
		return nil, err
	}
	if len(m.counts.Features()) < 2 {
		return nil, fmt.Errorf("%w: count table with a single feature", ErrConfig)
	}
	return &NegativeBinomial{m: m}, nil
}

// Source returns the Stan source of the model program.
func (nb *NegativeBinomial) Source() []byte {
	return append([]byte{}, negBinSrc...)
}

// Fit samples the posterior of the model
// over all the features of the count table
// in a single sampler run.
func (nb *NegativeBinomial) Fit(ctx context.Context, s Sampler) error {
	m := nb.m
	d := stan.Data{
		"N":     len(m.counts.Samples()),
		"D":     len(m.counts.Features()),
		"p":     len(m.covs),
		"depth": m.depth(),
		"x":     m.x,
		"y":     m.countMatrix(),
		"B_p":   m.beta,
		"phi_s": m.cauchy,
	}

	f, err := s.Sample(ctx, Run{
		Name:   "negative_binomial",
		Src:    nb.Source(),
		Data:   d,
		Chains: m.chains,
		Iter:   m.iter,
		Seed:   m.seed,
	})
	if err != nil {
		return fmt.Errorf("model negative_binomial: %v", err)
	}
	nb.fit = f
	nb.fits = nil
	return nil
}

// FitFeatures samples the posterior of the model
// with an independent sampler run
// per feature of the count table.
// Runs are distributed among the process
// defined with SetCPU.
func (nb *NegativeBinomial) FitFeatures(ctx context.Context, s Sampler) error {
	features := nb.m.counts.Features()
	fits := make([]*stan.Fit, len(features))
	errs := make([]error, len(features))

	in := make(chan int, numCPU*2)
	var wg sync.WaitGroup
	for i := 0; i < numCPU; i++ {
		go func() {
			for f := range in {
				fits[f], errs[f] = nb.fitFeature(ctx, s, features[f], f)
				wg.Done()
			}
		}()
	}
	for f := range features {
		wg.Add(1)
		in <- f
	}
	wg.Wait()
	close(in)

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	nb.fits = fits
	nb.fit = nil
	return nil
}

// FitFeature samples the posterior
// of a single feature of the count table.
func (nb *NegativeBinomial) fitFeature(ctx context.Context, s Sampler, feature string, id int) (*stan.Fit, error) {
	m := nb.m
	d := stan.Data{
		"N":     len(m.counts.Samples()),
		"p":     len(m.covs),
		"depth": m.depth(),
		"x":     m.x,
		"y":     m.featureCounts(feature),
		"B_p":   m.beta,
		"phi_s": m.cauchy,
	}

	f, err := s.Sample(ctx, Run{
		Name:   "negative_binomial_single",
		Prefix: fmt.Sprintf("negative_binomial_single-%d", id),
		Src:    append([]byte{}, negBinSingleSrc...),
		Data:   d,
		Chains: m.chains,
		Iter:   m.iter,
		Seed:   m.seed,
	})
	if err != nil {
		return nil, fmt.Errorf("model negative_binomial_single: feature %q: %v", feature, err)
	}
	return f, nil
}

// ToInference labels the posterior draws
// of a fitted model
// as an inference data value,
// with the model coefficients
// in centered log-ratio coordinates,
// the posterior predictive and log likelihood draws,
// and the observed counts.
func (nb *NegativeBinomial) ToInference() (*inference.Data, error) {
	m := nb.m
	features := m.counts.Features()
	samples := m.counts.Samples()

	p := inference.Param{
		Vars: []string{"beta", "phi"},
		Dims: map[string][]string{
			"beta": {"covariate", "feature"},
			"phi":  {"feature"},
		},
		Coords: map[string][]string{
			"covariate": m.covs,
			"feature":   features,
		},
		PosteriorPredictive: "y_predict",
		LogLikelihood:       "log_lik",
		SampleNames:         samples,
	}

	var d *inference.Data
	var err error
	switch {
	case nb.fit != nil:
		p.ALRVars = []string{"beta"}
		d, err = inference.FromSingleFit(nb.fit, p)
	case nb.fits != nil:
		fits := make([]inference.Fit, len(nb.fits))
		for i, f := range nb.fits {
			fits[i] = f
		}
		d, err = inference.FromMultipleFits(fits, "feature", features, p)
	default:
		return nil, ErrNotFitted
	}
	if err != nil {
		return nil, err
	}

	if err := d.SetObserved(m.observed(), samples, features); err != nil {
		return nil, err
	}
	return d, nil
}
