// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package stan

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

// ReadCSV reads the posterior draws of a single chain
// from a CmdStan output file.
func ReadCSV(r io.Reader) (*Fit, error) {
	c, err := readChain(r)
	if err != nil {
		return nil, err
	}

	f := NewFit(1)
	for _, n := range c.names {
		v := c.vars[n]
		if err := f.Add(n, v.shape, v.vals); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ReadFiles reads the posterior draws of a sampler run
// from CmdStan output files,
// one file per chain.
// All files must contain the same variables
// and the same number of draws.
func ReadFiles(names ...string) (*Fit, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("expecting at least one output file")
	}

	var chains []*chainDraws
	for _, name := range names {
		c, err := readChainFile(name)
		if err != nil {
			return nil, err
		}
		chains = append(chains, c)
	}

	first := chains[0]
	for i, c := range chains[1:] {
		if !slices.Equal(c.names, first.names) {
			return nil, fmt.Errorf("on file %q: variables do not match file %q", names[i+1], names[0])
		}
		if c.draws != first.draws {
			return nil, fmt.Errorf("on file %q: got %d draws, want %d", names[i+1], c.draws, first.draws)
		}
		for _, n := range c.names {
			if !slices.Equal(c.vars[n].shape, first.vars[n].shape) {
				return nil, fmt.Errorf("on file %q: variable %q: shape does not match file %q", names[i+1], n, names[0])
			}
		}
	}

	f := NewFit(len(chains))
	for _, n := range first.names {
		vals := make([]float64, 0, len(chains)*len(first.vars[n].vals))
		for _, c := range chains {
			vals = append(vals, c.vars[n].vals...)
		}
		if err := f.Add(n, first.vars[n].shape, vals); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func readChainFile(name string) (*chainDraws, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := readChain(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return c, nil
}

// ChainDraws are the draws of a single chain
// read from a CmdStan output file.
type chainDraws struct {
	draws int
	names []string
	vars  map[string]*chainVar
}

// A chainVar is a model variable
// spread over one or more columns
// of a CmdStan output file.
// The cols field maps each row-major element
// of the variable
// to its column in the file.
type chainVar struct {
	shape []int
	cols  []int
	vals  []float64
}

// ReadChain reads the draws of a CmdStan output file.
//
// The file is a CSV file
// with any number of comment lines,
// a header with the column names,
// and one row per draw.
// Columns of sampler diagnostics
// are suffixed with "__"
// and are ignored.
// A model variable with multiple elements
// is spread over several columns
// named with dot separated indices,
// such as "beta.2.13",
// one based,
// with the leftmost index
// changing fastest.
func readChain(r io.Reader) (*chainDraws, error) {
	tab := csv.NewReader(r)
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	c, err := readHeader(head)
	if err != nil {
		return nil, err
	}

	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		for _, n := range c.names {
			v := c.vars[n]
			for _, col := range v.cols {
				f, err := strconv.ParseFloat(row[col], 64)
				if err != nil {
					return nil, fmt.Errorf("on row %d: column %q: %v", ln, head[col], err)
				}
				v.vals = append(v.vals, f)
			}
		}
		c.draws++
	}
	if c.draws == 0 {
		return nil, fmt.Errorf("file without draws")
	}
	return c, nil
}

// ReadHeader reads the column names
// of a CmdStan output file
// and maps each model variable
// to its columns.
func readHeader(head []string) (*chainDraws, error) {
	c := &chainDraws{
		vars: make(map[string]*chainVar),
	}

	type column struct {
		col int
		idx []int
	}
	byVar := make(map[string][]column)
	for i, h := range head {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, fmt.Errorf("column %d: empty column name", i+1)
		}
		if strings.HasSuffix(h, "__") {
			continue
		}

		parts := strings.Split(h, ".")
		name := parts[0]
		if name == "" {
			return nil, fmt.Errorf("column %d: invalid column name %q", i+1, h)
		}
		idx := make([]int, 0, len(parts)-1)
		for _, p := range parts[1:] {
			v, err := strconv.Atoi(p)
			if err != nil || v < 1 {
				return nil, fmt.Errorf("column %d: invalid column name %q", i+1, h)
			}
			idx = append(idx, v)
		}

		prev, ok := byVar[name]
		if !ok {
			c.names = append(c.names, name)
		}
		if ok && len(prev[0].idx) != len(idx) {
			return nil, fmt.Errorf("column %d: variable %q: inconsistent indices", i+1, name)
		}
		byVar[name] = append(prev, column{col: i, idx: idx})
	}
	if len(c.names) == 0 {
		return nil, fmt.Errorf("file without variables")
	}

	for _, n := range c.names {
		cols := byVar[n]
		rank := len(cols[0].idx)
		shape := make([]int, rank)
		for _, col := range cols {
			for k, v := range col.idx {
				if v > shape[k] {
					shape[k] = v
				}
			}
		}

		sz := 1
		stride := make([]int, rank)
		for k := rank - 1; k >= 0; k-- {
			stride[k] = sz
			sz *= shape[k]
		}
		if len(cols) != sz {
			return nil, fmt.Errorf("variable %q: got %d columns, want %d", n, len(cols), sz)
		}

		v := &chainVar{
			shape: shape,
			cols:  make([]int, sz),
		}
		for i := range v.cols {
			v.cols[i] = -1
		}
		for _, col := range cols {
			off := 0
			for k, x := range col.idx {
				off += (x - 1) * stride[k]
			}
			if v.cols[off] != -1 {
				return nil, fmt.Errorf("variable %q: repeated column %q", n, head[col.col])
			}
			v.cols[off] = col.col
		}
		c.vars[n] = v
	}
	return c, nil
}
