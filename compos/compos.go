// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package compos implements changes of basis
// for compositional regression coefficients.
//
// A model fitted on d categories
// usually reports coefficients
// in additive log-ratio (ALR) coordinates,
// that is relative to a fixed reference category,
// so only d-1 values per draw are stored.
// For reporting and comparison across features
// the centered log-ratio (CLR) basis is preferred,
// in which the d values of each draw sum to zero.
package compos

import (
	"errors"
	"fmt"
	"slices"
)

// ErrShape is used to indicate
// that a coefficient array has an invalid
// or inconsistent shape.
var ErrShape = errors.New("compos: invalid shape")

// ALRToCLR transforms a matrix of coefficients
// in additive log-ratio coordinates,
// with categories as rows and draws as columns,
// into centered log-ratio coordinates.
// The reference category is restored
// as the first row of the output,
// so an input with d-1 rows
// produces an output with d rows,
// and each column of the output sums to zero.
//
// The input matrix is not modified.
func ALRToCLR(x [][]float64) ([][]float64, error) {
	nd, err := draws(x)
	if err != nil {
		return nil, err
	}

	clr := make([][]float64, len(x)+1)
	clr[0] = make([]float64, nd)
	for i, r := range x {
		clr[i+1] = slices.Clone(r)
	}

	for d := 0; d < nd; d++ {
		var sum float64
		for _, r := range clr {
			sum += r[d]
		}
		m := sum / float64(len(clr))
		for _, r := range clr {
			r[d] -= m
		}
	}
	return clr, nil
}

// CLRToALR transforms a matrix of coefficients
// in centered log-ratio coordinates,
// with categories as rows and draws as columns,
// into additive log-ratio coordinates
// relative to the first category,
// which is removed from the output.
//
// The input matrix is not modified.
func CLRToALR(x [][]float64) ([][]float64, error) {
	nd, err := draws(x)
	if err != nil {
		return nil, err
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("%w: matrix with %d rows", ErrShape, len(x))
	}

	ref := x[0]
	alr := make([][]float64, len(x)-1)
	for i, r := range x[1:] {
		v := make([]float64, nd)
		for d, c := range r {
			v[d] = c - ref[d]
		}
		alr[i] = v
	}
	return alr, nil
}

// ConvertBetaCoordinates transforms an array
// of regression coefficients
// in additive log-ratio coordinates,
// indexed as covariate, category, and draw,
// into centered log-ratio coordinates.
// Each covariate slice is transformed independently,
// so an input of c covariates, d-1 categories, and n draws
// produces an output of c covariates, d categories, and n draws,
// in which the categories of each covariate-draw pair
// sum to zero.
//
// The input array is not modified.
func ConvertBetaCoordinates(beta [][][]float64) ([][][]float64, error) {
	if len(beta) == 0 {
		return nil, fmt.Errorf("%w: empty coefficient array", ErrShape)
	}

	nf := len(beta[0])
	nd := 0
	if nf > 0 {
		nd = len(beta[0][0])
	}

	clr := make([][][]float64, len(beta))
	for i, s := range beta {
		if len(s) != nf {
			return nil, fmt.Errorf("%w: covariate %d with %d categories, want %d", ErrShape, i, len(s), nf)
		}
		c, err := ALRToCLR(s)
		if err != nil {
			return nil, fmt.Errorf("covariate %d: %w", i, err)
		}
		if len(c[0]) != nd {
			return nil, fmt.Errorf("%w: covariate %d with %d draws, want %d", ErrShape, i, len(c[0]), nd)
		}
		clr[i] = c
	}
	return clr, nil
}

// Draws validates a coefficient matrix
// and returns the number of draws per category.
func draws(x [][]float64) (int, error) {
	if len(x) == 0 {
		return 0, fmt.Errorf("%w: empty matrix", ErrShape)
	}
	nd := len(x[0])
	if nd == 0 {
		return 0, fmt.Errorf("%w: matrix without draws", ErrShape)
	}
	for i, r := range x {
		if len(r) != nd {
			return 0, fmt.Errorf("%w: row %d with %d draws, want %d", ErrShape, i, len(r), nd)
		}
	}
	return nd, nil
}
