// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package postmap implements a heat map image
// of the posterior mean of a model parameter,
// a row per feature
// and a column per covariate.
package postmap

import (
	"fmt"
	"image"
	"image/color"

	"github.com/js-arias/blind"
	"github.com/js-arias/micdiff/inference"
)

type Image struct {
	// Size in pixels of each cell of the map
	Cell int

	// Means are the values to be drawn,
	// a row per feature
	// and a column per covariate
	Means [][]float64

	// A Gradient color scheme
	Gradient Gradienter

	cols   int
	magVal float64
}

// Format prepares the image for drawing.
// Values are scaled symmetrically around zero,
// so the middle of the gradient
// is always a zero effect.
func (i *Image) Format() {
	if i.Cell < 1 {
		i.Cell = 16
	}
	if i.Gradient == nil {
		i.Gradient = RainbowPurpleToRed{}
	}

	i.cols = 0
	i.magVal = 0
	for _, r := range i.Means {
		if len(r) > i.cols {
			i.cols = len(r)
		}
		for _, v := range r {
			if v < 0 {
				v = -v
			}
			if v > i.magVal {
				i.magVal = v
			}
		}
	}
}

func (i *Image) ColorModel() color.Model { return color.RGBAModel }
func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.cols*i.Cell, len(i.Means)*i.Cell)
}
func (i *Image) At(x, y int) color.Color {
	r := y / i.Cell
	c := x / i.Cell
	if r < 0 || r >= len(i.Means) || c < 0 || c >= len(i.Means[r]) {
		return color.RGBA{211, 211, 211, 255}
	}

	v := 0.5
	if i.magVal > 0 {
		v = 0.5 + i.Means[r][c]/(2*i.magVal)
	}
	return i.Gradient.Gradient(v)
}

// Mean returns the posterior mean of a parameter
// of an inference data value,
// a row per feature
// and a column per covariate,
// with the label of each row
// and each column.
// The parameter must have one or two dimensions
// beyond chain and draw,
// the last one being the feature dimension.
func Mean(d *inference.Data, parameter string) ([][]float64, []string, []string, error) {
	if d == nil || d.Posterior == nil {
		return nil, nil, nil, fmt.Errorf("data without a posterior group")
	}
	a := d.Posterior.Array(parameter)
	if a == nil {
		return nil, nil, nil, fmt.Errorf("unknown parameter %q", parameter)
	}

	m, err := a.Mean("chain", "draw")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parameter %q: %v", parameter, err)
	}

	dims := m.Dims()
	sh := m.Shape()
	switch len(dims) {
	case 1:
		ms := make([][]float64, sh[0])
		for f := range ms {
			ms[f] = []float64{m.At(f)}
		}
		return ms, m.Coords(dims[0]), []string{parameter}, nil
	case 2:
		ms := make([][]float64, sh[1])
		for f := range ms {
			ms[f] = make([]float64, sh[0])
			for c := range ms[f] {
				ms[f][c] = m.At(c, f)
			}
		}
		return ms, m.Coords(dims[1]), m.Coords(dims[0]), nil
	}
	return nil, nil, nil, fmt.Errorf("parameter %q: too many dimensions", parameter)
}

// Gradienter is an interface for types
// that return a color gradient
type Gradienter interface {
	Gradient(v float64) color.Color
}

// LightGrayScale returns a gray scale
// between 0 (light gray)
// to 1 (black).
type LightGrayScale struct{}

func (l LightGrayScale) Gradient(v float64) color.Color {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	c := 200 - uint8(v*200)
	return color.RGBA{c, c, c, 255}
}

// Incandescent is the incandescent color scheme
// of Paul Tol
// <https://personal.sron.nl/~pault/#fig:scheme_incandescent>.
type Incandescent struct{}

func (i Incandescent) Gradient(v float64) color.Color {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	return blind.Sequential(blind.Incandescent, v)
}

// Iridescent is the iridescent color scheme
// of Paul Tol
// <https://personal.sron.nl/~pault/#fig:scheme_iridescent>.
type Iridescent struct{}

func (i Iridescent) Gradient(v float64) color.Color {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	return blind.Sequential(blind.Iridescent, v)
}

// RainbowPurpleToRed is the rainbow color scheme
// of Paul Tol
// <https://personal.sron.nl/~pault/#fig:scheme_rainbow_smooth>
// starting at purple and ending at red.
type RainbowPurpleToRed struct{}

func (r RainbowPurpleToRed) Gradient(v float64) color.Color {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	return blind.Sequential(blind.RainbowPurpleToRed, v)
}
