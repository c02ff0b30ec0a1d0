// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package model_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/js-arias/micdiff/counts"
	"github.com/js-arias/micdiff/design"
	"github.com/js-arias/micdiff/fitparam"
	"github.com/js-arias/micdiff/model"
	"github.com/js-arias/micdiff/stan"
)

// A fakeSampler fabricates posterior draws
// without running any external sampler.
// Every coefficient draw is zero,
// so centered log-ratio coordinates
// keep the draws unchanged,
// and every other variable
// uses sequential or constant values
// that can be traced
// through the assembled arrays.
type fakeSampler struct {
	mu   sync.Mutex
	runs []model.Run
}

func (s *fakeSampler) Sample(ctx context.Context, r model.Run) (*stan.Fit, error) {
	s.mu.Lock()
	s.runs = append(s.runs, r)
	s.mu.Unlock()

	total := r.Chains * r.Iter
	f := stan.NewFit(r.Chains)
	switch r.Name {
	case "negative_binomial", "multinomial":
		n := r.Data["N"].(int)
		d := r.Data["D"].(int)
		p := r.Data["p"].(int)
		if err := f.Add("beta", []int{p, d - 1}, zeros(total*p*(d-1))); err != nil {
			return nil, err
		}
		if r.Name == "negative_binomial" {
			if err := f.Add("phi", []int{d}, seq(total*d)); err != nil {
				return nil, err
			}
		}
		if err := f.Add("y_predict", []int{n, d}, seq(total*n*d)); err != nil {
			return nil, err
		}
		if err := f.Add("log_lik", []int{n, d}, seq(total*n*d)); err != nil {
			return nil, err
		}
	case "negative_binomial_single":
		id, err := strconv.Atoi(strings.TrimPrefix(r.Prefix, "negative_binomial_single-"))
		if err != nil {
			return nil, err
		}
		n := r.Data["N"].(int)
		p := r.Data["p"].(int)
		if err := f.Add("beta", []int{p}, constant(total*p, float64(id))); err != nil {
			return nil, err
		}
		if err := f.Add("phi", nil, constant(total, float64(id)+0.5)); err != nil {
			return nil, err
		}
		if err := f.Add("y_predict", []int{n}, constant(total*n, float64(id)+0.25)); err != nil {
			return nil, err
		}
		if err := f.Add("log_lik", []int{n}, constant(total*n, float64(id)+0.75)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func newCounts() *counts.Matrix {
	m := counts.New()

	m.Add("ASV0001", "sample1", 153)
	m.Add("ASV0001", "sample2", 12)
	m.Add("ASV0001", "sample3", 37)
	m.Add("ASV0002", "sample1", 3)
	m.Add("ASV0002", "sample2", 780)
	m.Add("ASV0002", "sample3", 5)
	m.Add("ASV0003", "sample1", 41)
	m.Add("ASV0003", "sample2", 9)
	m.Add("ASV0003", "sample3", 401)
	return m
}

func newMetadata() *design.Metadata {
	md := design.NewMetadata()

	md.Add("sample1", "diet", "carnivore")
	md.Add("sample2", "diet", "herbivore")
	md.Add("sample3", "diet", "herbivore")
	return md
}

func newParam() model.Param {
	fp := fitparam.New("params.tab")
	fp.SetChains(2)
	fp.SetIter(5)
	fp.SetSeed(7)

	return model.Param{
		Counts:   newCounts(),
		Metadata: newMetadata(),
		Formula:  "diet",
		FitParam: fp,
	}
}

func TestNegativeBinomial(t *testing.T) {
	nb, err := model.NewNegativeBinomial(newParam())
	if err != nil {
		t.Fatalf("unable to create model: %v", err)
	}

	_, err = nb.ToInference()
	if !errors.Is(err, model.ErrNotFitted) {
		t.Errorf("unfitted model: got error %q, want %q", err, model.ErrNotFitted)
	}
	if err == nil || !strings.Contains(err.Error(), "has not been fit") {
		t.Errorf("unfitted model: error %q should state the model is not fitted", err)
	}

	s := &fakeSampler{}
	if err := nb.Fit(context.Background(), s); err != nil {
		t.Fatalf("unable to fit model: %v", err)
	}

	if len(s.runs) != 1 {
		t.Fatalf("sampler runs: got %d, want 1", len(s.runs))
	}
	r := s.runs[0]
	if r.Name != "negative_binomial" {
		t.Errorf("run: name: got %q, want %q", r.Name, "negative_binomial")
	}
	if r.Chains != 2 || r.Iter != 5 || r.Seed != 7 {
		t.Errorf("run: sampling: got %d chains, %d iter, seed %d, want 2, 5, 7", r.Chains, r.Iter, r.Seed)
	}
	if b := r.Data["B_p"].(float64); b != 5 {
		t.Errorf("run: beta prior: got %.6f, want 5", b)
	}
	if c := r.Data["phi_s"].(float64); c != 5 {
		t.Errorf("run: Cauchy scale: got %.6f, want 5", c)
	}
	depth := r.Data["depth"].([]float64)
	wantDepth := []float64{math.Log(197), math.Log(801), math.Log(443)}
	for i, d := range depth {
		if math.Abs(d-wantDepth[i]) > 1e-10 {
			t.Errorf("run: depth: got %v, want %v", depth, wantDepth)
			break
		}
	}
	y := r.Data["y"].([][]int64)
	wantY := [][]int64{{153, 3, 41}, {12, 780, 9}, {37, 5, 401}}
	if !reflect.DeepEqual(y, wantY) {
		t.Errorf("run: counts: got %v, want %v", y, wantY)
	}
	x := r.Data["x"].([][]float64)
	wantX := [][]float64{{1, 0}, {1, 1}, {1, 1}}
	if !reflect.DeepEqual(x, wantX) {
		t.Errorf("run: design matrix: got %v, want %v", x, wantX)
	}

	d, err := nb.ToInference()
	if err != nil {
		t.Fatalf("unable to build inference data: %v", err)
	}

	beta := d.Posterior.Array("beta")
	if beta == nil {
		t.Fatalf("posterior: expecting variable %q", "beta")
	}
	dims := []string{"chain", "draw", "covariate", "feature"}
	if g := beta.Dims(); !reflect.DeepEqual(g, dims) {
		t.Errorf("posterior beta: dims: got %v, want %v", g, dims)
	}
	if g := beta.Shape(); !reflect.DeepEqual(g, []int{2, 5, 2, 3}) {
		t.Errorf("posterior beta: shape: got %v, want %v", g, []int{2, 5, 2, 3})
	}
	covs := []string{"Intercept", "diet[T.herbivore]"}
	if g := beta.Coords("covariate"); !reflect.DeepEqual(g, covs) {
		t.Errorf("posterior beta: covariates: got %v, want %v", g, covs)
	}
	features := []string{"ASV0001", "ASV0002", "ASV0003"}
	if g := beta.Coords("feature"); !reflect.DeepEqual(g, features) {
		t.Errorf("posterior beta: features: got %v, want %v", g, features)
	}
	for _, v := range beta.Values() {
		if v != 0 {
			t.Errorf("posterior beta: zero draws should stay zero, got %.6f", v)
			break
		}
	}

	phi := d.Posterior.Array("phi")
	if phi == nil {
		t.Fatalf("posterior: expecting variable %q", "phi")
	}
	if g := phi.Shape(); !reflect.DeepEqual(g, []int{2, 5, 3}) {
		t.Errorf("posterior phi: shape: got %v, want %v", g, []int{2, 5, 3})
	}
	for c := 0; c < 2; c++ {
		for dr := 0; dr < 5; dr++ {
			for f := 0; f < 3; f++ {
				want := float64((c*5+dr)*3+f) + 1
				if g := phi.At(c, dr, f); g != want {
					t.Errorf("posterior phi: value %d,%d,%d: got %.6f, want %.6f", c, dr, f, g, want)
				}
			}
		}
	}

	pp := d.PosteriorPredictive.Array("y_predict")
	if pp == nil {
		t.Fatalf("posterior predictive: expecting variable %q", "y_predict")
	}
	ppDims := []string{"chain", "draw", "sample", "feature"}
	if g := pp.Dims(); !reflect.DeepEqual(g, ppDims) {
		t.Errorf("posterior predictive: dims: got %v, want %v", g, ppDims)
	}
	samples := []string{"sample1", "sample2", "sample3"}
	if g := pp.Coords("sample"); !reflect.DeepEqual(g, samples) {
		t.Errorf("posterior predictive: samples: got %v, want %v", g, samples)
	}

	obs := d.ObservedData.Array("observed")
	if obs == nil {
		t.Fatalf("observed data: expecting variable %q", "observed")
	}
	for si, sample := range samples {
		for fi, feature := range features {
			want := newCounts().Counts(feature, sample)
			if g := obs.At(si, fi); g != want {
				t.Errorf("observed: value %q-%q: got %.6f, want %.6f", sample, feature, g, want)
			}
		}
	}
}

func TestNegativeBinomialFeatures(t *testing.T) {
	nb, err := model.NewNegativeBinomial(newParam())
	if err != nil {
		t.Fatalf("unable to create model: %v", err)
	}

	model.SetCPU(2)
	defer model.SetCPU(1)

	s := &fakeSampler{}
	if err := nb.FitFeatures(context.Background(), s); err != nil {
		t.Fatalf("unable to fit model: %v", err)
	}
	if len(s.runs) != 3 {
		t.Fatalf("sampler runs: got %d, want 3", len(s.runs))
	}

	d, err := nb.ToInference()
	if err != nil {
		t.Fatalf("unable to build inference data: %v", err)
	}

	beta := d.Posterior.Array("beta")
	if g := beta.Shape(); !reflect.DeepEqual(g, []int{2, 5, 2, 3}) {
		t.Fatalf("posterior beta: shape: got %v, want %v", g, []int{2, 5, 2, 3})
	}
	features := []string{"ASV0001", "ASV0002", "ASV0003"}
	if g := beta.Coords("feature"); !reflect.DeepEqual(g, features) {
		t.Errorf("posterior beta: features: got %v, want %v", g, features)
	}
	phi := d.Posterior.Array("phi")
	pp := d.PosteriorPredictive.Array("y_predict")
	ll := d.LogLikelihood.Array("log_lik")
	for c := 0; c < 2; c++ {
		for dr := 0; dr < 5; dr++ {
			for f := 0; f < 3; f++ {
				if g := beta.At(c, dr, 0, f); g != float64(f) {
					t.Errorf("posterior beta: value %d,%d,0,%d: got %.6f, want %.6f", c, dr, f, g, float64(f))
				}
				if g := phi.At(c, dr, f); g != float64(f)+0.5 {
					t.Errorf("posterior phi: value %d,%d,%d: got %.6f, want %.6f", c, dr, f, g, float64(f)+0.5)
				}
				for si := 0; si < 3; si++ {
					if g := pp.At(c, dr, si, f); g != float64(f)+0.25 {
						t.Errorf("posterior predictive: value %d,%d,%d,%d: got %.6f, want %.6f", c, dr, si, f, g, float64(f)+0.25)
					}
					if g := ll.At(c, dr, si, f); g != float64(f)+0.75 {
						t.Errorf("log likelihood: value %d,%d,%d,%d: got %.6f, want %.6f", c, dr, si, f, g, float64(f)+0.75)
					}
				}
			}
		}
	}
}

func TestMultinomial(t *testing.T) {
	mn, err := model.NewMultinomial(newParam())
	if err != nil {
		t.Fatalf("unable to create model: %v", err)
	}

	if _, err := mn.ToInference(); !errors.Is(err, model.ErrNotFitted) {
		t.Errorf("unfitted model: got error %q, want %q", err, model.ErrNotFitted)
	}

	s := &fakeSampler{}
	if err := mn.Fit(context.Background(), s); err != nil {
		t.Fatalf("unable to fit model: %v", err)
	}

	r := s.runs[0]
	if r.Name != "multinomial" {
		t.Errorf("run: name: got %q, want %q", r.Name, "multinomial")
	}
	if _, ok := r.Data["phi_s"]; ok {
		t.Errorf("run: data: multinomial model should not set a dispersion prior")
	}

	d, err := mn.ToInference()
	if err != nil {
		t.Fatalf("unable to build inference data: %v", err)
	}
	if d.Posterior.Array("phi") != nil {
		t.Errorf("posterior: unexpected variable %q", "phi")
	}
	beta := d.Posterior.Array("beta")
	if g := beta.Shape(); !reflect.DeepEqual(g, []int{2, 5, 2, 3}) {
		t.Errorf("posterior beta: shape: got %v, want %v", g, []int{2, 5, 2, 3})
	}
}

func TestModelError(t *testing.T) {
	tests := map[string]model.Param{
		"no counts":   {Metadata: newMetadata(), Formula: "diet"},
		"no metadata": {Counts: newCounts(), Formula: "diet"},
		"no formula":  {Counts: newCounts(), Metadata: newMetadata()},
		"bad formula": {Counts: newCounts(), Metadata: newMetadata(), Formula: "host"},
	}

	for name, p := range tests {
		if _, err := model.NewNegativeBinomial(p); !errors.Is(err, model.ErrConfig) {
			t.Errorf("%s: got error %v, want %v", name, err, model.ErrConfig)
		}
		if _, err := model.NewMultinomial(p); !errors.Is(err, model.ErrConfig) {
			t.Errorf("%s: got error %v, want %v", name, err, model.ErrConfig)
		}
	}

	single := counts.New()
	single.Add("ASV0001", "sample1", 10)
	single.Add("ASV0001", "sample2", 20)
	p := model.Param{Counts: single, Metadata: newMetadata(), Formula: "diet"}
	if _, err := model.NewNegativeBinomial(p); !errors.Is(err, model.ErrConfig) {
		t.Errorf("single feature: got error %v, want %v", err, model.ErrConfig)
	}

	zero := newCounts()
	zero.Add("ASV0001", "sample4", 0)
	p = model.Param{Counts: zero, Metadata: newMetadata(), Formula: "diet"}
	if _, err := model.NewNegativeBinomial(p); !errors.Is(err, model.ErrConfig) {
		t.Errorf("zero total: got error %v, want %v", err, model.ErrConfig)
	}
}

func zeros(n int) []float64 {
	return make([]float64, n)
}

func constant(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func seq(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i + 1)
	}
	return s
}
