// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package inference provides labeled containers
// for the posterior draws of a fitted model.
//
// The raw draws of an external sampler
// are stored as flat arrays.
// This package arranges them
// into multi-dimensional arrays
// with named dimensions and labeled coordinates,
// grouped into a single inference data value
// that can be stored,
// summarized,
// and used for diagnostics.
package inference

import (
	"errors"
	"slices"
	"strings"
)

// ErrShape is used to indicate
// that a set of posterior draws
// cannot be arranged into the requested shape.
var ErrShape = errors.New("inference: invalid shape")

// ErrConfig is used to indicate
// an invalid or incomplete labeling
// of a set of posterior draws.
var ErrConfig = errors.New("inference: invalid configuration")

// A Dataset is an ordered collection
// of named arrays.
type Dataset struct {
	names []string
	vars  map[string]*Array
}

// NewDataset creates a new empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		vars: make(map[string]*Array),
	}
}

// Add adds a named array to a dataset.
// If the variable is already in the dataset,
// its array will be replaced.
func (ds *Dataset) Add(name string, a *Array) {
	name = strings.TrimSpace(name)
	if name == "" || a == nil {
		return
	}
	if _, ok := ds.vars[name]; !ok {
		ds.names = append(ds.names, name)
	}
	ds.vars[name] = a
}

// Array returns the array of a variable,
// or nil if the variable is not in the dataset.
func (ds *Dataset) Array(name string) *Array {
	return ds.vars[name]
}

// Len returns the number of variables in a dataset.
func (ds *Dataset) Len() int {
	return len(ds.names)
}

// Vars returns the names of the variables of a dataset,
// in the order in which they were added.
func (ds *Dataset) Vars() []string {
	return slices.Clone(ds.names)
}

// Data is a complete inference artifact.
// Groups that were not produced are nil.
//
// Dimensions shared among groups,
// such as feature and sample,
// have identical coordinates in every group.
type Data struct {
	// Posterior are the draws of the model parameters.
	Posterior *Dataset

	// PosteriorPredictive are draws of replicated observations.
	PosteriorPredictive *Dataset

	// LogLikelihood are the pointwise log likelihood draws.
	LogLikelihood *Dataset

	// ObservedData holds the observed counts
	// used to fit the model.
	ObservedData *Dataset
}

// SetObserved adds the observed count table
// to an inference data value,
// as the variable "observed"
// with dimensions sample and feature.
// Values must be given in row-major order,
// with samples as rows
// and features as columns.
func (d *Data) SetObserved(values []float64, samples, features []string) error {
	a, err := NewArray(values, []string{"sample", "feature"}, []int{len(samples), len(features)}, map[string][]string{
		"sample":  samples,
		"feature": features,
	})
	if err != nil {
		return err
	}

	ds := NewDataset()
	ds.Add("observed", a)
	d.ObservedData = ds
	return nil
}
