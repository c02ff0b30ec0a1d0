// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package design builds design matrices
// for linear models
// from per-sample metadata
// and a model formula.
package design

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// A term is a variable of a model formula.
type term struct {
	name string
	cat  bool // forced categorical
}

// ParseFormula reads an additive model formula,
// such as "diet + age",
// and returns its terms.
// A term wrapped as "C(x)"
// is treated as categorical
// even if its values are numeric.
func parseFormula(formula string) ([]term, error) {
	if strings.TrimSpace(formula) == "" {
		return nil, fmt.Errorf("empty formula")
	}

	var terms []term
	for _, f := range strings.Split(formula, "+") {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, fmt.Errorf("empty term in formula %q", formula)
		}
		t := term{name: f}
		if strings.HasPrefix(f, "C(") && strings.HasSuffix(f, ")") {
			t.name = strings.TrimSpace(f[2 : len(f)-1])
			t.cat = true
			if t.name == "" {
				return nil, fmt.Errorf("empty term in formula %q", formula)
			}
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// Matrix builds the design matrix
// for a model formula
// over the samples of a metadata set.
// Rows follow the sample order of the metadata.
// The first column is a constant intercept.
// A variable in which every value
// can be read as a number
// is added as a single column with its values;
// any other variable is expanded
// by treatment coding:
// its values are sorted,
// the first value is taken as the reference level,
// and every other level adds an indicator column
// named "variable[T.level]".
//
// Matrix returns the design matrix
// and the names of its columns,
// that label the covariates of the fitted model.
func Matrix(md *Metadata, formula string) (*mat.Dense, []string, error) {
	terms, err := parseFormula(formula)
	if err != nil {
		return nil, nil, err
	}
	samples := md.Samples()
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("metadata without samples")
	}

	names := []string{"Intercept"}
	cols := [][]float64{constant(len(samples))}
	for _, t := range terms {
		if !slices.Contains(md.Columns(), t.name) {
			return nil, nil, fmt.Errorf("unknown variable %q in formula %q", t.name, formula)
		}

		vals := make([]string, len(samples))
		for i, s := range samples {
			v := md.Value(s, t.name)
			if v == "" {
				return nil, nil, fmt.Errorf("sample %q: no value for variable %q", s, t.name)
			}
			vals[i] = v
		}

		if !t.cat {
			if num, ok := numericColumn(vals); ok {
				names = append(names, t.name)
				cols = append(cols, num)
				continue
			}
		}

		levels := slices.Clone(vals)
		slices.Sort(levels)
		levels = slices.Compact(levels)
		for _, l := range levels[1:] {
			ind := make([]float64, len(samples))
			for i, v := range vals {
				if v == l {
					ind[i] = 1
				}
			}
			names = append(names, fmt.Sprintf("%s[T.%s]", t.name, l))
			cols = append(cols, ind)
		}
	}

	d := mat.NewDense(len(samples), len(names), nil)
	for j, c := range cols {
		d.SetCol(j, c)
	}
	return d, names, nil
}

func constant(n int) []float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = 1
	}
	return c
}

// NumericColumn reads a string column as numbers.
func numericColumn(vals []string) ([]float64, bool) {
	num := make([]float64, len(vals))
	for i, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		num[i] = f
	}
	return num, true
}
