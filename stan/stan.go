// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package stan drives CmdStan,
// the command line interface
// of the Stan probabilistic programming language,
// to sample the posterior distribution
// of a model,
// and reads the posterior draws
// produced by a run.
package stan

import (
	"fmt"
	"strings"
)

// A Fit is the collection of posterior draws
// produced by a sampler run.
//
// Draws of each variable are stored flat,
// with the draws of each chain
// stored consecutively.
type Fit struct {
	chains int
	draws  int // per chain

	names []string
	vars  map[string]fitVar
}

type fitVar struct {
	shape []int
	vals  []float64
}

// NewFit creates a new empty draw collection
// for a given number of chains.
func NewFit(chains int) *Fit {
	if chains < 1 {
		chains = 1
	}
	return &Fit{
		chains: chains,
		vars:   make(map[string]fitVar),
	}
}

// Add adds the draws of a model variable
// to the collection.
// The shape is the shape of the variable
// on a single draw,
// empty for a scalar variable,
// and values contain the draws of all chains,
// in row-major order,
// with the draw axis first
// and the draws of each chain stored consecutively.
// Adding a variable a second time
// replaces the stored draws.
func (f *Fit) Add(name string, shape []int, values []float64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("variable without name")
	}

	sz := 1
	for i, s := range shape {
		if s < 1 {
			return fmt.Errorf("variable %q: invalid size %d for axis %d", name, s, i)
		}
		sz *= s
	}
	if len(values) == 0 || len(values)%sz != 0 {
		return fmt.Errorf("variable %q: got %d values, want a multiple of %d", name, len(values), sz)
	}
	total := len(values) / sz
	if total%f.chains != 0 {
		return fmt.Errorf("variable %q: %d draws for %d chains", name, total, f.chains)
	}
	draws := total / f.chains
	if f.draws == 0 {
		f.draws = draws
	}
	if draws != f.draws {
		return fmt.Errorf("variable %q: got %d draws per chain, want %d", name, draws, f.draws)
	}

	if _, ok := f.vars[name]; !ok {
		f.names = append(f.names, name)
	}
	f.vars[name] = fitVar{
		shape: append([]int{}, shape...),
		vals:  append([]float64{}, values...),
	}
	return nil
}

// Chains returns the number of chains of the run.
func (f *Fit) Chains() int {
	return f.chains
}

// Draws returns the number of draws per chain.
func (f *Fit) Draws() int {
	return f.draws
}

// Variables returns the names of the variables
// of the collection,
// in the order in which they were added.
func (f *Fit) Variables() []string {
	return append([]string{}, f.names...)
}

// Variable returns the draws of a model variable.
// Values are in row-major order.
// The first element of the shape
// is the total number of draws,
// with the draws of each chain stored consecutively,
// and the rest of the shape
// is the shape of the variable on a single draw.
func (f *Fit) Variable(name string) ([]float64, []int, error) {
	v, ok := f.vars[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown variable %q", name)
	}
	shape := append([]int{f.chains * f.draws}, v.shape...)
	return append([]float64{}, v.vals...), shape, nil
}
