// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package diagplot_test

import (
	"testing"

	"github.com/js-arias/micdiff/diagplot"
	"github.com/js-arias/micdiff/inference"
)

func TestEstimates(t *testing.T) {
	d := newData(t)

	p, err := diagplot.Estimates(d, "phi", nil, 1)
	if err != nil {
		t.Fatalf("estimates: unexpected error: %v", err)
	}
	if g := p.X.Label.Text; g != "feature" {
		t.Errorf("estimates: x label: got %q, want %q", g, "feature")
	}
	if g := p.Y.Label.Text; g != "differential" {
		t.Errorf("estimates: y label: got %q, want %q", g, "differential")
	}

	sel := map[string]string{"covariate": "diet[T.herbivore]"}
	if _, err := diagplot.Estimates(d, "beta", sel, 2); err != nil {
		t.Errorf("estimates: selection: unexpected error: %v", err)
	}
}

func TestEstimatesError(t *testing.T) {
	d := newData(t)

	if _, err := diagplot.Estimates(nil, "phi", nil, 1); err == nil {
		t.Errorf("estimates: expecting error for nil data")
	}
	if _, err := diagplot.Estimates(d, "gamma", nil, 1); err == nil {
		t.Errorf("estimates: expecting error for an unknown parameter")
	}
	if _, err := diagplot.Estimates(d, "beta", nil, 1); err == nil {
		t.Errorf("estimates: expecting error for a multi-dimensional parameter")
	}
	sel := map[string]string{"covariate": "no-covariate"}
	if _, err := diagplot.Estimates(d, "beta", sel, 1); err == nil {
		t.Errorf("estimates: expecting error for an unknown coordinate")
	}
}

func TestPPC(t *testing.T) {
	d := newData(t)

	p, err := diagplot.PPC(d)
	if err != nil {
		t.Fatalf("ppc: unexpected error: %v", err)
	}
	want := "50.00% of predictions in 95% credible interval"
	if g := p.Title.Text; g != want {
		t.Errorf("ppc: title: got %q, want %q", g, want)
	}
	if g := p.X.Label.Text; g != "table entry" {
		t.Errorf("ppc: x label: got %q, want %q", g, "table entry")
	}
	if g := p.Y.Label.Text; g != "count" {
		t.Errorf("ppc: y label: got %q, want %q", g, "count")
	}
}

func TestPPCError(t *testing.T) {
	d := newData(t)

	if _, err := diagplot.PPC(nil); err == nil {
		t.Errorf("ppc: expecting error for nil data")
	}
	if _, err := diagplot.PPC(&inference.Data{Posterior: d.Posterior}); err == nil {
		t.Errorf("ppc: expecting error for data without predictions")
	}
	noObs := &inference.Data{
		Posterior:           d.Posterior,
		PosteriorPredictive: d.PosteriorPredictive,
	}
	if _, err := diagplot.PPC(noObs); err == nil {
		t.Errorf("ppc: expecting error for data without observations")
	}
}

// NewData creates inference data
// with two chains and two draws per chain,
// three features,
// and two samples.
//
// For the posterior predictive,
// the draws of a table entry e
// (in row major order over sample and feature)
// are e, e+1, e+2, and e+3,
// so the 95% credible interval of the entry
// is the open interval (e, e+3).
// Three of the six observations
// fall inside their interval.
func newData(t testing.TB) *inference.Data {
	t.Helper()

	features := []string{"otu1", "otu2", "otu3"}
	samples := []string{"sample1", "sample2"}
	covs := []string{"Intercept", "diet[T.herbivore]"}

	post := inference.NewDataset()

	phi := make([]float64, 0, 12)
	for _, cd := range []float64{-1, 0, 0, 1} {
		for _, b := range []float64{5, 1, 3} {
			phi = append(phi, b+cd)
		}
	}
	a, err := inference.NewArray(phi, []string{"chain", "draw", "feature"}, []int{2, 2, 3}, map[string][]string{"feature": features})
	if err != nil {
		t.Fatalf("phi: unexpected error: %v", err)
	}
	post.Add("phi", a)

	beta := make([]float64, 2*2*2*3)
	for i := range beta {
		beta[i] = float64(i)
	}
	a, err = inference.NewArray(beta, []string{"chain", "draw", "covariate", "feature"}, []int{2, 2, 2, 3}, map[string][]string{"covariate": covs, "feature": features})
	if err != nil {
		t.Fatalf("beta: unexpected error: %v", err)
	}
	post.Add("beta", a)

	pp := inference.NewDataset()
	yp := make([]float64, 0, 24)
	for c := 0; c < 2; c++ {
		for dr := 0; dr < 2; dr++ {
			for s := 0; s < 2; s++ {
				for f := 0; f < 3; f++ {
					e := s*3 + f
					yp = append(yp, float64(e+c*2+dr))
				}
			}
		}
	}
	a, err = inference.NewArray(yp, []string{"chain", "draw", "sample", "feature"}, []int{2, 2, 2, 3}, map[string][]string{"sample": samples, "feature": features})
	if err != nil {
		t.Fatalf("y_predict: unexpected error: %v", err)
	}
	pp.Add("y_predict", a)

	obs := inference.NewDataset()
	a, err = inference.NewArray([]float64{1.5, 2.5, 2, 100, 4.5, 4}, []string{"sample", "feature"}, []int{2, 3}, map[string][]string{"sample": samples, "feature": features})
	if err != nil {
		t.Fatalf("observed: unexpected error: %v", err)
	}
	obs.Add("observed", a)

	return &inference.Data{
		Posterior:           post,
		PosteriorPredictive: pp,
		ObservedData:        obs,
	}
}
