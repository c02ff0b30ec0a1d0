// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package inference

import (
	"fmt"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// An Array is a multi-dimensional array of values
// with named dimensions
// and labeled coordinates.
// Values are stored in row-major order,
// so the last dimension changes fastest.
//
// An array is immutable after creation.
type Array struct {
	dims   []string
	shape  []int
	stride []int
	coords map[string][]string
	data   []float64
}

// NewArray creates a new array
// from a row-major value slice,
// a list of dimension names,
// the size of each dimension,
// and the coordinate labels of each dimension.
// Dimensions without labels,
// usually chain and draw,
// are labeled by position.
// Entries in coords
// for dimensions not in the array
// are ignored.
func NewArray(data []float64, dims []string, shape []int, coords map[string][]string) (*Array, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: array without dimensions", ErrShape)
	}
	if len(dims) != len(shape) {
		return nil, fmt.Errorf("%w: %d dimensions with %d sizes", ErrShape, len(dims), len(shape))
	}

	seen := make(map[string]bool, len(dims))
	sz := 1
	for i, d := range dims {
		if seen[d] {
			return nil, fmt.Errorf("%w: repeated dimension %q", ErrConfig, d)
		}
		seen[d] = true
		if shape[i] < 1 {
			return nil, fmt.Errorf("%w: dimension %q with size %d", ErrShape, d, shape[i])
		}
		sz *= shape[i]
	}
	if len(data) != sz {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrShape, len(data), sz)
	}

	cs := make(map[string][]string)
	for i, d := range dims {
		c, ok := coords[d]
		if !ok {
			continue
		}
		if len(c) != shape[i] {
			return nil, fmt.Errorf("%w: dimension %q with %d labels, want %d", ErrShape, d, len(c), shape[i])
		}
		cs[d] = slices.Clone(c)
	}

	a := &Array{
		dims:   slices.Clone(dims),
		shape:  slices.Clone(shape),
		coords: cs,
		data:   slices.Clone(data),
	}
	a.setStride()
	return a, nil
}

func (a *Array) setStride() {
	a.stride = make([]int, len(a.shape))
	s := 1
	for i := len(a.shape) - 1; i >= 0; i-- {
		a.stride[i] = s
		s *= a.shape[i]
	}
}

// At returns the value at the given indices.
// It will panic if the number of indices
// is different from the number of dimensions,
// or an index is out of range.
func (a *Array) At(idx ...int) float64 {
	if len(idx) != len(a.dims) {
		panic(fmt.Sprintf("array with %d dimensions, got %d indices", len(a.dims), len(idx)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= a.shape[i] {
			panic(fmt.Sprintf("index %d out of range for dimension %q", x, a.dims[i]))
		}
		off += x * a.stride[i]
	}
	return a.data[off]
}

// Coords returns the coordinate labels of a dimension,
// or nil if the dimension is not part of the array.
func (a *Array) Coords(dim string) []string {
	p := slices.Index(a.dims, dim)
	if p < 0 {
		return nil
	}
	if c, ok := a.coords[dim]; ok {
		return slices.Clone(c)
	}

	c := make([]string, a.shape[p])
	for i := range c {
		c[i] = strconv.Itoa(i)
	}
	return c
}

// Dims returns the dimension names of an array.
func (a *Array) Dims() []string {
	return slices.Clone(a.dims)
}

// Len returns the total number of values of an array.
func (a *Array) Len() int {
	return len(a.data)
}

// Shape returns the size of each dimension of an array.
func (a *Array) Shape() []int {
	return slices.Clone(a.shape)
}

// Values returns a copy of the values of an array,
// in row-major order.
func (a *Array) Values() []float64 {
	return slices.Clone(a.data)
}

// Sel returns a new array
// in which the given dimension
// is fixed at the given coordinate label
// and removed.
func (a *Array) Sel(dim, label string) (*Array, error) {
	p := slices.Index(a.dims, dim)
	if p < 0 {
		return nil, fmt.Errorf("%w: dimension %q is not defined", ErrConfig, dim)
	}
	if len(a.dims) == 1 {
		return nil, fmt.Errorf("%w: cannot remove the only dimension %q", ErrConfig, dim)
	}
	x := slices.Index(a.Coords(dim), label)
	if x < 0 {
		return nil, fmt.Errorf("%w: dimension %q: label %q is not defined", ErrConfig, dim, label)
	}

	dims := slices.Delete(a.Dims(), p, p+1)
	shape := slices.Delete(a.Shape(), p, p+1)
	data := make([]float64, len(a.data)/a.shape[p])
	idx := make([]int, len(a.dims))
	idx[p] = x
	rest := make([]int, 0, len(dims))
	for i := range a.dims {
		if i == p {
			continue
		}
		rest = append(rest, i)
	}
	for off := range data {
		src := 0
		for i, x := range idx {
			src += x * a.stride[i]
		}
		data[off] = a.data[src]

		for i := len(rest) - 1; i >= 0; i-- {
			j := rest[i]
			idx[j]++
			if idx[j] < a.shape[j] {
				break
			}
			idx[j] = 0
		}
	}

	coords := make(map[string][]string, len(dims))
	for _, d := range dims {
		if c, ok := a.coords[d]; ok {
			coords[d] = c
		}
	}
	return NewArray(data, dims, shape, coords)
}

// Reduce collapses the given dimensions of an array,
// applying function fn to the values of each cell,
// and returns an array with the remaining dimensions.
func (a *Array) Reduce(fn func([]float64) float64, dims ...string) (*Array, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: no dimensions to reduce", ErrConfig)
	}
	red := make([]int, 0, len(dims))
	for _, d := range dims {
		p := slices.Index(a.dims, d)
		if p < 0 {
			return nil, fmt.Errorf("%w: dimension %q is not defined", ErrConfig, d)
		}
		if slices.Contains(red, p) {
			return nil, fmt.Errorf("%w: repeated dimension %q", ErrConfig, d)
		}
		red = append(red, p)
	}
	if len(red) == len(a.dims) {
		return nil, fmt.Errorf("%w: cannot reduce all dimensions", ErrConfig)
	}

	var keep []int
	for i := range a.dims {
		if slices.Contains(red, i) {
			continue
		}
		keep = append(keep, i)
	}

	oDims := make([]string, len(keep))
	oShape := make([]int, len(keep))
	sz := 1
	for i, p := range keep {
		oDims[i] = a.dims[p]
		oShape[i] = a.shape[p]
		sz *= a.shape[p]
	}
	cell := 1
	for _, p := range red {
		cell *= a.shape[p]
	}

	data := make([]float64, sz)
	buf := make([]float64, cell)
	idx := make([]int, len(a.dims))
	for off := range data {
		for i := range buf {
			src := 0
			for j, x := range idx {
				src += x * a.stride[j]
			}
			buf[i] = a.data[src]

			for j := len(red) - 1; j >= 0; j-- {
				p := red[j]
				idx[p]++
				if idx[p] < a.shape[p] {
					break
				}
				idx[p] = 0
			}
		}
		data[off] = fn(buf)

		for i := len(keep) - 1; i >= 0; i-- {
			p := keep[i]
			idx[p]++
			if idx[p] < a.shape[p] {
				break
			}
			idx[p] = 0
		}
	}

	coords := make(map[string][]string, len(oDims))
	for _, d := range oDims {
		if c, ok := a.coords[d]; ok {
			coords[d] = c
		}
	}
	return NewArray(data, oDims, oShape, coords)
}

// Mean returns an array
// with the mean of the values
// over the given dimensions.
func (a *Array) Mean(dims ...string) (*Array, error) {
	return a.Reduce(func(x []float64) float64 {
		return stat.Mean(x, nil)
	}, dims...)
}

// StdDev returns an array
// with the standard deviation of the values
// over the given dimensions.
func (a *Array) StdDev(dims ...string) (*Array, error) {
	return a.Reduce(func(x []float64) float64 {
		return stat.StdDev(x, nil)
	}, dims...)
}

// Quantile returns an array
// with the empirical quantile p of the values
// over the given dimensions.
func (a *Array) Quantile(p float64, dims ...string) (*Array, error) {
	return a.Reduce(func(x []float64) float64 {
		slices.Sort(x)
		return stat.Quantile(p, stat.Empirical, x, nil)
	}, dims...)
}
