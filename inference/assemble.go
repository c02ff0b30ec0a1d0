// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package inference

import (
	"fmt"
	"slices"

	"github.com/js-arias/micdiff/compos"
)

// A Fit provides access to the raw posterior draws
// of a fitted model.
type Fit interface {
	// Chains returns the number of chains of the run.
	Chains() int

	// Variable returns the draws of a model variable.
	// Values are in row-major order.
	// The first element of the shape
	// is the total number of draws,
	// with the draws of each chain stored consecutively,
	// and the rest of the shape
	// are the declared dimensions of the variable.
	Variable(name string) (values []float64, shape []int, err error)
}

// Param are the parameters used to label
// the posterior draws of a fitted model.
type Param struct {
	// Vars are the names of the model parameters
	// to be extracted into the posterior group.
	Vars []string

	// Dims assigns the dimension names
	// of each model parameter,
	// without the chain and draw dimensions.
	Dims map[string][]string

	// Coords are the coordinate labels
	// of each named dimension.
	Coords map[string][]string

	// ALRVars are the parameters
	// reported by the model
	// in additive log-ratio coordinates,
	// to be transformed into centered log-ratio coordinates
	// before labeling.
	// The labels of the last dimension
	// of such parameters
	// include the reference category,
	// so their length is one more
	// than the size reported by the fit.
	ALRVars []string

	// PosteriorPredictive is the name
	// of the posterior predictive variable.
	// It can be empty.
	PosteriorPredictive string

	// LogLikelihood is the name
	// of the log likelihood variable.
	// It can be empty.
	LogLikelihood string

	// SampleNames are the labels of the sample dimension
	// of the posterior predictive
	// and log likelihood variables.
	SampleNames []string
}

// Validate checks that every requested parameter
// has defined dimensions and coordinates.
func (p Param) validate() error {
	if len(p.Vars) == 0 {
		return fmt.Errorf("%w: no parameters to extract", ErrConfig)
	}
	for _, v := range p.Vars {
		dims, ok := p.Dims[v]
		if !ok {
			return fmt.Errorf("%w: parameter %q: undefined dimensions", ErrConfig, v)
		}
		for _, d := range dims {
			if _, ok := p.Coords[d]; !ok {
				return fmt.Errorf("%w: parameter %q: dimension %q: undefined coordinates", ErrConfig, v, d)
			}
		}
	}
	for _, v := range p.ALRVars {
		if !slices.Contains(p.Vars, v) {
			return fmt.Errorf("%w: parameter %q: not a model parameter", ErrConfig, v)
		}
		if len(p.Dims[v]) == 0 {
			return fmt.Errorf("%w: parameter %q: without dimensions", ErrConfig, v)
		}
	}
	if p.PosteriorPredictive != "" || p.LogLikelihood != "" {
		if len(p.SampleNames) == 0 {
			return fmt.Errorf("%w: undefined sample names", ErrConfig)
		}
	}
	return nil
}

// FromSingleFit builds an inference data value
// from the draws of a single fitted model.
// The flat draw axis of each parameter
// is split evenly among the chains of the fit,
// parameters listed in ALRVars
// are transformed into centered log-ratio coordinates,
// and each parameter is labeled
// with dimensions chain and draw
// followed by its declared dimensions.
//
// If defined,
// the posterior predictive
// and log likelihood variables
// are placed in their own groups,
// labeled by their shape
// with dimensions chain and draw,
// followed by sample,
// and by feature if the variable has a second dimension.
//
// On any error no data is returned.
func FromSingleFit(f Fit, p Param) (*Data, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	chains := f.Chains()
	if chains < 1 {
		return nil, fmt.Errorf("%w: fit with %d chains", ErrShape, chains)
	}

	post := NewDataset()
	for _, v := range p.Vars {
		a, err := singleVar(f, v, p, chains)
		if err != nil {
			return nil, err
		}
		post.Add(v, a)
	}

	d := &Data{Posterior: post}
	if v := p.PosteriorPredictive; v != "" {
		ds, err := predictive(f, v, p, chains)
		if err != nil {
			return nil, err
		}
		d.PosteriorPredictive = ds
	}
	if v := p.LogLikelihood; v != "" {
		ds, err := predictive(f, v, p, chains)
		if err != nil {
			return nil, err
		}
		d.LogLikelihood = ds
	}

	if err := sameDraws(d); err != nil {
		return nil, err
	}
	return d, nil
}

// FromMultipleFits builds an inference data value
// from a collection of fitted models,
// one per feature,
// in which fits[i] holds the draws
// of the feature named featureNames[i].
// The per-feature draws of each parameter
// are stacked along the concat dimension,
// that must be among the declared dimensions
// of every parameter,
// so the coordinates of the concat dimension
// follow the order of featureNames
// and any labels for that dimension in p.Coords
// are ignored.
// All fits must have the same number
// of chains and draws.
//
// Posterior predictive and log likelihood variables,
// with per-feature dimensions chain, draw, and sample,
// are stacked into dimensions
// chain, draw, sample, and feature.
//
// The resulting data is identical
// to the one built by FromSingleFit
// from an equivalent single fit.
//
// On any error no data is returned.
func FromMultipleFits(fits []Fit, concat string, featureNames []string, p Param) (*Data, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	for _, v := range p.Vars {
		if !slices.Contains(p.Dims[v], concat) {
			return nil, fmt.Errorf("%w: concatenation dimension %q must match dimensions of parameter %q", ErrConfig, concat, v)
		}
	}
	if len(fits) == 0 {
		return nil, fmt.Errorf("%w: no fitted models", ErrShape)
	}
	if len(featureNames) != len(fits) {
		return nil, fmt.Errorf("%w: got %d feature names, want %d", ErrShape, len(featureNames), len(fits))
	}

	chains := fits[0].Chains()
	if chains < 1 {
		return nil, fmt.Errorf("%w: fit with %d chains", ErrShape, chains)
	}
	for i, f := range fits[1:] {
		if f.Chains() != chains {
			return nil, fmt.Errorf("%w: fit %d: got %d chains, want %d", ErrShape, i+1, f.Chains(), chains)
		}
	}

	post := NewDataset()
	for _, v := range p.Vars {
		a, err := multiVar(fits, v, concat, featureNames, p, chains)
		if err != nil {
			return nil, err
		}
		post.Add(v, a)
	}

	d := &Data{Posterior: post}
	if v := p.PosteriorPredictive; v != "" {
		ds, err := multiPredictive(fits, v, featureNames, p, chains)
		if err != nil {
			return nil, err
		}
		d.PosteriorPredictive = ds
	}
	if v := p.LogLikelihood; v != "" {
		ds, err := multiPredictive(fits, v, featureNames, p, chains)
		if err != nil {
			return nil, err
		}
		d.LogLikelihood = ds
	}

	if err := sameDraws(d); err != nil {
		return nil, err
	}
	return d, nil
}

// ChainDraws returns the number of draws per chain
// of a variable.
func chainDraws(v string, total, chains int) (int, error) {
	if total < 1 {
		return 0, fmt.Errorf("%w: variable %q: without draws", ErrShape, v)
	}
	if total%chains != 0 {
		return 0, fmt.Errorf("%w: variable %q: %d draws cannot be split into %d chains", ErrShape, v, total, chains)
	}
	return total / chains, nil
}

// SingleVar extracts a posterior parameter
// from a single fit.
func singleVar(f Fit, v string, p Param, chains int) (*Array, error) {
	vals, shape, err := f.Variable(v)
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %v", v, err)
	}
	if len(shape) == 0 {
		return nil, fmt.Errorf("%w: parameter %q: without shape", ErrShape, v)
	}
	total := shape[0]
	draws, err := chainDraws(v, total, chains)
	if err != nil {
		return nil, err
	}
	sz := 1
	for _, s := range shape {
		sz *= s
	}
	if sz != len(vals) {
		return nil, fmt.Errorf("%w: parameter %q: got %d values, want %d", ErrShape, v, len(vals), sz)
	}

	dims := p.Dims[v]
	if len(dims) != len(shape)-1 {
		return nil, fmt.Errorf("%w: parameter %q: got %d dimensions, want %d", ErrShape, v, len(shape)-1, len(dims))
	}

	if slices.Contains(p.ALRVars, v) {
		vals, err = alrDraws(v, vals, shape)
		if err != nil {
			return nil, err
		}

		// the reference category is restored,
		// so the last dimension grows by one
		shape = slices.Clone(shape)
		shape[len(shape)-1]++
	}

	aDims := make([]string, 0, len(dims)+2)
	aShape := make([]int, 0, len(dims)+2)
	aDims = append(aDims, "chain", "draw")
	aShape = append(aShape, chains, draws)
	coords := make(map[string][]string, len(dims))
	for i, d := range dims {
		c := p.Coords[d]
		if len(c) != shape[i+1] {
			return nil, fmt.Errorf("%w: parameter %q: dimension %q: got size %d, want %d", ErrShape, v, d, shape[i+1], len(c))
		}
		aDims = append(aDims, d)
		aShape = append(aShape, shape[i+1])
		coords[d] = c
	}

	// a row-major array of total draws in chain-major order
	// is also a row-major array
	// with chain and draw as leading dimensions,
	// so splitting the chains is just a labeling
	return NewArray(vals, aDims, aShape, coords)
}

// AlrDraws transforms the draws of a parameter
// from additive log-ratio coordinates
// into centered log-ratio coordinates.
// The last dimension of the parameter
// is the compositional one,
// and grows by one in the output.
func alrDraws(v string, vals []float64, shape []int) ([]float64, error) {
	total := shape[0]
	last := shape[len(shape)-1]
	mid := 1
	for _, s := range shape[1 : len(shape)-1] {
		mid *= s
	}

	cube := make([][][]float64, mid)
	for m := 0; m < mid; m++ {
		s := make([][]float64, last)
		for l := 0; l < last; l++ {
			r := make([]float64, total)
			for t := 0; t < total; t++ {
				r[t] = vals[(t*mid+m)*last+l]
			}
			s[l] = r
		}
		cube[m] = s
	}

	clr, err := compos.ConvertBetaCoordinates(cube)
	if err != nil {
		return nil, fmt.Errorf("%w: parameter %q: %v", ErrShape, v, err)
	}

	out := make([]float64, total*mid*(last+1))
	for m := 0; m < mid; m++ {
		for l := 0; l <= last; l++ {
			for t := 0; t < total; t++ {
				out[(t*mid+m)*(last+1)+l] = clr[m][l][t]
			}
		}
	}
	return out, nil
}

// Predictive extracts a posterior predictive
// or log likelihood variable
// from a single fit
// into its own dataset.
func predictive(f Fit, v string, p Param, chains int) (*Dataset, error) {
	vals, shape, err := f.Variable(v)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %v", v, err)
	}
	if len(shape) == 0 {
		return nil, fmt.Errorf("%w: variable %q: without shape", ErrShape, v)
	}
	draws, err := chainDraws(v, shape[0], chains)
	if err != nil {
		return nil, err
	}

	aDims := []string{"chain", "draw"}
	aShape := []int{chains, draws}
	coords := make(map[string][]string, 2)
	switch len(shape) {
	case 2:
		if len(p.SampleNames) != shape[1] {
			return nil, fmt.Errorf("%w: variable %q: got %d samples, want %d", ErrShape, v, shape[1], len(p.SampleNames))
		}
		aDims = append(aDims, "sample")
		aShape = append(aShape, shape[1])
		coords["sample"] = p.SampleNames
	case 3:
		if len(p.SampleNames) != shape[1] {
			return nil, fmt.Errorf("%w: variable %q: got %d samples, want %d", ErrShape, v, shape[1], len(p.SampleNames))
		}
		feat, ok := p.Coords["feature"]
		if !ok {
			return nil, fmt.Errorf("%w: variable %q: dimension \"feature\": undefined coordinates", ErrConfig, v)
		}
		if len(feat) != shape[2] {
			return nil, fmt.Errorf("%w: variable %q: got %d features, want %d", ErrShape, v, shape[2], len(feat))
		}
		aDims = append(aDims, "sample", "feature")
		aShape = append(aShape, shape[1], shape[2])
		coords["sample"] = p.SampleNames
		coords["feature"] = feat
	default:
		return nil, fmt.Errorf("%w: variable %q: got %d dimensions, want 1 or 2", ErrShape, v, len(shape)-1)
	}

	sz := 1
	for _, s := range aShape {
		sz *= s
	}
	if sz != len(vals) {
		return nil, fmt.Errorf("%w: variable %q: got %d values, want %d", ErrShape, v, len(vals), sz)
	}

	a, err := NewArray(vals, aDims, aShape, coords)
	if err != nil {
		return nil, err
	}
	ds := NewDataset()
	ds.Add(v, a)
	return ds, nil
}

// MultiVar extracts a posterior parameter
// from a collection of per-feature fits,
// stacking the per-feature draws
// along the concat dimension.
func multiVar(fits []Fit, v, concat string, featureNames []string, p Param, chains int) (*Array, error) {
	dims := p.Dims[v]
	k := slices.Index(dims, concat)

	// dimensions of the per-feature draws
	rest := slices.Delete(slices.Clone(dims), k, k+1)
	restSize := make([]int, len(rest))
	sz := 1
	for i, d := range rest {
		restSize[i] = len(p.Coords[d])
		sz *= restSize[i]
	}

	// size and stride of the labeled dimensions
	tailSize := make([]int, len(dims))
	for j, d := range dims {
		if j == k {
			tailSize[j] = len(fits)
			continue
		}
		tailSize[j] = len(p.Coords[d])
	}
	stride := make([]int, len(dims))
	s := 1
	for j := len(dims) - 1; j >= 0; j-- {
		stride[j] = s
		s *= tailSize[j]
	}
	tailTotal := s

	// per-feature offsets within the labeled dimensions
	base := make([]int, sz)
	for r := 0; r < sz; r++ {
		off := 0
		rr := r
		for j := len(rest) - 1; j >= 0; j-- {
			x := rr % restSize[j]
			rr /= restSize[j]
			dj := j
			if j >= k {
				dj = j + 1
			}
			off += x * stride[dj]
		}
		base[r] = off
	}

	var vals []float64
	var total, draws int
	for i, f := range fits {
		fv, shape, err := f.Variable(v)
		if err != nil {
			return nil, fmt.Errorf("fit %d: parameter %q: %v", i, v, err)
		}
		if len(shape) == 0 {
			return nil, fmt.Errorf("%w: fit %d: parameter %q: without shape", ErrShape, i, v)
		}
		if i == 0 {
			total = shape[0]
			draws, err = chainDraws(v, total, chains)
			if err != nil {
				return nil, err
			}
			vals = make([]float64, total*tailTotal)
		} else if shape[0] != total {
			return nil, fmt.Errorf("%w: fit %d: parameter %q: got %d draws, want %d", ErrShape, i, v, shape[0], total)
		}
		if len(shape)-1 != len(rest) {
			return nil, fmt.Errorf("%w: fit %d: parameter %q: got %d dimensions, want %d", ErrShape, i, v, len(shape)-1, len(rest))
		}
		for j, d := range rest {
			if shape[j+1] != restSize[j] {
				return nil, fmt.Errorf("%w: fit %d: parameter %q: dimension %q: got size %d, want %d", ErrShape, i, v, d, shape[j+1], restSize[j])
			}
		}
		if len(fv) != total*sz {
			return nil, fmt.Errorf("%w: fit %d: parameter %q: got %d values, want %d", ErrShape, i, v, len(fv), total*sz)
		}

		for t := 0; t < total; t++ {
			for r := 0; r < sz; r++ {
				vals[t*tailTotal+base[r]+i*stride[k]] = fv[t*sz+r]
			}
		}
	}

	aDims := append([]string{"chain", "draw"}, dims...)
	aShape := append([]int{chains, draws}, tailSize...)
	coords := make(map[string][]string, len(dims))
	for j, d := range dims {
		if j == k {
			coords[d] = featureNames
			continue
		}
		coords[d] = p.Coords[d]
	}
	return NewArray(vals, aDims, aShape, coords)
}

// MultiPredictive extracts a posterior predictive
// or log likelihood variable
// from a collection of per-feature fits
// into its own dataset,
// stacking the per-feature draws
// along a new trailing feature dimension.
func multiPredictive(fits []Fit, v string, featureNames []string, p Param, chains int) (*Dataset, error) {
	ns := len(p.SampleNames)
	nf := len(fits)

	var vals []float64
	var total, draws int
	for i, f := range fits {
		fv, shape, err := f.Variable(v)
		if err != nil {
			return nil, fmt.Errorf("fit %d: variable %q: %v", i, v, err)
		}
		if len(shape) != 2 {
			return nil, fmt.Errorf("%w: fit %d: variable %q: got %d dimensions, want 1", ErrShape, i, v, len(shape)-1)
		}
		if i == 0 {
			total = shape[0]
			draws, err = chainDraws(v, total, chains)
			if err != nil {
				return nil, err
			}
			vals = make([]float64, total*ns*nf)
		} else if shape[0] != total {
			return nil, fmt.Errorf("%w: fit %d: variable %q: got %d draws, want %d", ErrShape, i, v, shape[0], total)
		}
		if shape[1] != ns {
			return nil, fmt.Errorf("%w: fit %d: variable %q: got %d samples, want %d", ErrShape, i, v, shape[1], ns)
		}
		if len(fv) != total*ns {
			return nil, fmt.Errorf("%w: fit %d: variable %q: got %d values, want %d", ErrShape, i, v, len(fv), total*ns)
		}

		for t := 0; t < total; t++ {
			for s := 0; s < ns; s++ {
				vals[(t*ns+s)*nf+i] = fv[t*ns+s]
			}
		}
	}

	a, err := NewArray(vals, []string{"chain", "draw", "sample", "feature"}, []int{chains, draws, ns, nf}, map[string][]string{
		"sample":  p.SampleNames,
		"feature": featureNames,
	})
	if err != nil {
		return nil, err
	}
	ds := NewDataset()
	ds.Add(v, a)
	return ds, nil
}

// SameDraws checks that every variable
// of an inference data value
// has the same number of chains and draws.
func sameDraws(d *Data) error {
	chains, draws := -1, -1
	var first string
	for _, ds := range []*Dataset{d.Posterior, d.PosteriorPredictive, d.LogLikelihood} {
		if ds == nil {
			continue
		}
		for _, v := range ds.Vars() {
			a := ds.Array(v)
			sh := a.Shape()
			if chains < 0 {
				chains, draws = sh[0], sh[1]
				first = v
				continue
			}
			if sh[0] != chains || sh[1] != draws {
				return fmt.Errorf("%w: variable %q: got %d chains and %d draws, %q has %d chains and %d draws", ErrShape, v, sh[0], sh[1], first, chains, draws)
			}
		}
	}
	return nil
}
