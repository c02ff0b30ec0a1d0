// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package inference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Group names of an inference data value.
const (
	groupPosterior  = "posterior"
	groupPredictive = "posterior_predictive"
	groupLogLike    = "log_likelihood"
	groupObserved   = "observed_data"
)

// CanonDims is the canonical dimension order
// of the variables of each group.
var canonDims = map[string][]string{
	groupPosterior:  {"chain", "draw", "covariate", "feature"},
	groupPredictive: {"chain", "draw", "sample", "feature"},
	groupLogLike:    {"chain", "draw", "sample", "feature"},
	groupObserved:   {"sample", "feature"},
}

var tsvHeader = []string{
	"group",
	"variable",
	"chain",
	"draw",
	"covariate",
	"feature",
	"sample",
	"value",
}

// TSV writes an inference data value as a TSV file,
// one row per value,
// with a column per dimension label.
// Labels of dimensions not used by a variable
// are written as "-".
// Values are written with full precision.
func (d *Data) TSV(w io.Writer) error {
	fmt.Fprintf(w, "# differential abundance inference data\n")
	fmt.Fprintf(w, "# data save on: %s\n", time.Now().Format(time.RFC3339))

	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write(tsvHeader); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	groups := []struct {
		name string
		ds   *Dataset
	}{
		{groupPosterior, d.Posterior},
		{groupPredictive, d.PosteriorPredictive},
		{groupLogLike, d.LogLikelihood},
		{groupObserved, d.ObservedData},
	}
	for _, g := range groups {
		if g.ds == nil {
			continue
		}
		for _, v := range g.ds.Vars() {
			if err := writeArray(tab, g.name, v, g.ds.Array(v)); err != nil {
				return err
			}
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}

// Column of each dimension in a TSV row.
var dimCols = map[string]int{
	"chain":     2,
	"draw":      3,
	"covariate": 4,
	"feature":   5,
	"sample":    6,
}

func writeArray(tab *csv.Writer, group, name string, a *Array) error {
	dims := a.Dims()
	pos := make([]int, len(dims))
	coords := make([][]string, len(dims))
	for i, d := range dims {
		c, ok := dimCols[d]
		if !ok {
			return fmt.Errorf("group %q: variable %q: cannot save dimension %q", group, name, d)
		}
		pos[i] = c
		coords[i] = a.Coords(d)
	}

	row := make([]string, len(tsvHeader))
	row[0] = group
	row[1] = name
	idx := make([]int, len(dims))
	for off := 0; off < len(a.data); off++ {
		for i := 2; i < 7; i++ {
			row[i] = "-"
		}
		for i := range dims {
			row[pos[i]] = coords[i][idx[i]]
		}
		row[7] = strconv.FormatFloat(a.data[off], 'g', -1, 64)
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("when writing data: %v", err)
		}

		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < a.shape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return nil
}

// A tsvCell is a value read from a TSV row.
type tsvCell struct {
	ln  int
	idx []int
	val float64
}

// A tsvVar collects the values of a variable
// while reading a TSV file.
type tsvVar struct {
	dims   []string
	index  []map[string]int
	coords [][]string
	cells  []tsvCell
}

// ReadTSV reads an inference data value from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - group, the group of the variable:
//     "posterior", "posterior_predictive",
//     "log_likelihood", or "observed_data"
//   - variable, the name of the variable
//   - chain, draw, covariate, feature, sample,
//     the dimension labels of the value,
//     with "-" on dimensions not used by the variable
//   - value, the stored value
//
// The coordinates of each dimension
// follow the order in which the labels
// first appear in the file,
// and the dimensions of each variable
// follow the canonical order of its group.
// Here is an example file:
//
//	group	variable	chain	draw	covariate	feature	sample	value
//	posterior	beta	0	0	Intercept	F1	-	-0.15
//	posterior	beta	0	0	Intercept	F2	-	0.15
//	posterior	phi	0	0	-	F1	-	1.2
//	posterior	phi	0	0	-	F2	-	0.8
//	observed_data	observed	-	-	-	F1	S1	10
//	observed_data	observed	-	-	-	F2	S1	3
func ReadTSV(r io.Reader) (*Data, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range tsvHeader {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	type varKey struct {
		group string
		name  string
	}
	vars := make(map[varKey]*tsvVar)
	var order []varKey

	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		g := row[fields["group"]]
		cd, ok := canonDims[g]
		if !ok {
			return nil, fmt.Errorf("on row %d: unknown group %q", ln, g)
		}
		name := row[fields["variable"]]
		if name == "" {
			return nil, fmt.Errorf("on row %d: expecting variable name", ln)
		}

		var dims []string
		var labels []string
		for _, d := range cd {
			l := row[fields[d]]
			if l == "-" || l == "" {
				continue
			}
			dims = append(dims, d)
			labels = append(labels, l)
		}
		if len(dims) == 0 {
			return nil, fmt.Errorf("on row %d: variable %q: without dimensions", ln, name)
		}

		k := varKey{g, name}
		tv, ok := vars[k]
		if !ok {
			tv = &tsvVar{
				dims:   dims,
				index:  make([]map[string]int, len(dims)),
				coords: make([][]string, len(dims)),
			}
			for i := range tv.index {
				tv.index[i] = make(map[string]int)
			}
			vars[k] = tv
			order = append(order, k)
		} else if !slices.Equal(tv.dims, dims) {
			return nil, fmt.Errorf("on row %d: variable %q: got dimensions %v, want %v", ln, name, dims, tv.dims)
		}

		f := "value"
		val, err := strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %q: %v", ln, f, row[fields[f]], err)
		}

		idx := make([]int, len(dims))
		for i, l := range labels {
			x, ok := tv.index[i][l]
			if !ok {
				x = len(tv.coords[i])
				tv.index[i][l] = x
				tv.coords[i] = append(tv.coords[i], l)
			}
			idx[i] = x
		}
		tv.cells = append(tv.cells, tsvCell{ln: ln, idx: idx, val: val})
	}
	if len(order) == 0 {
		return nil, errors.New("empty inference data")
	}

	d := &Data{}
	for _, k := range order {
		a, err := vars[k].array()
		if err != nil {
			return nil, fmt.Errorf("group %q: variable %q: %v", k.group, k.name, err)
		}

		var ds *Dataset
		switch k.group {
		case groupPosterior:
			if d.Posterior == nil {
				d.Posterior = NewDataset()
			}
			ds = d.Posterior
		case groupPredictive:
			if d.PosteriorPredictive == nil {
				d.PosteriorPredictive = NewDataset()
			}
			ds = d.PosteriorPredictive
		case groupLogLike:
			if d.LogLikelihood == nil {
				d.LogLikelihood = NewDataset()
			}
			ds = d.LogLikelihood
		case groupObserved:
			if d.ObservedData == nil {
				d.ObservedData = NewDataset()
			}
			ds = d.ObservedData
		}
		ds.Add(k.name, a)
	}

	if err := sharedCoords(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Array builds the labeled array of a variable
// read from a TSV file.
func (tv *tsvVar) array() (*Array, error) {
	shape := make([]int, len(tv.dims))
	sz := 1
	for i, c := range tv.coords {
		shape[i] = len(c)
		sz *= len(c)
	}

	stride := make([]int, len(tv.dims))
	s := 1
	for i := len(tv.dims) - 1; i >= 0; i-- {
		stride[i] = s
		s *= shape[i]
	}

	data := make([]float64, sz)
	for i := range data {
		data[i] = math.NaN()
	}
	for _, c := range tv.cells {
		off := 0
		for i, x := range c.idx {
			off += x * stride[i]
		}
		if !math.IsNaN(data[off]) {
			return nil, fmt.Errorf("on row %d: repeated value", c.ln)
		}
		data[off] = c.val
	}
	if len(tv.cells) != sz {
		return nil, fmt.Errorf("got %d values, want %d", len(tv.cells), sz)
	}

	coords := make(map[string][]string, len(tv.dims))
	for i, d := range tv.dims {
		coords[d] = tv.coords[i]
	}
	return NewArray(data, tv.dims, shape, coords)
}

// SharedCoords checks that the labeled dimensions
// shared among the variables of an inference data value
// have identical coordinates.
func sharedCoords(d *Data) error {
	ref := make(map[string][]string)
	for _, ds := range []*Dataset{d.Posterior, d.PosteriorPredictive, d.LogLikelihood, d.ObservedData} {
		if ds == nil {
			continue
		}
		for _, v := range ds.Vars() {
			a := ds.Array(v)
			for _, dim := range a.Dims() {
				if dim == "chain" || dim == "draw" {
					continue
				}
				c := a.Coords(dim)
				r, ok := ref[dim]
				if !ok {
					ref[dim] = c
					continue
				}
				if !slices.Equal(r, c) {
					return fmt.Errorf("%w: dimension %q: labels differ among variables", ErrShape, dim)
				}
			}
		}
	}
	return nil
}
