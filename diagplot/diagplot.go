// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package diagplot implements diagnostic plots
// for the posterior draws of a fitted model.
package diagplot

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/js-arias/micdiff/inference"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// An estimatesPlot is a plot of sorted parameter estimates
// with an error bar per estimate.
type estimatesPlot struct {
	mean  []float64
	bar   []float64
	line  draw.LineStyle
	glyph draw.GlyphStyle
}

// DataRange implements the plot.DataRanger interface.
func (ep *estimatesPlot) DataRange() (xMin, xMax, yMin, yMax float64) {
	yMin = math.Inf(1)
	yMax = math.Inf(-1)
	for i, m := range ep.mean {
		if m-ep.bar[i] < yMin {
			yMin = m - ep.bar[i]
		}
		if m+ep.bar[i] > yMax {
			yMax = m + ep.bar[i]
		}
	}
	return -1, float64(len(ep.mean)), yMin, yMax
}

// Plot implements the plot.Plotter interface.
func (ep *estimatesPlot) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	c.SetLineStyle(ep.line)
	for i, m := range ep.mean {
		x := trX(float64(i))
		var p vg.Path
		p.Move(vg.Point{X: x, Y: trY(m - ep.bar[i])})
		p.Line(vg.Point{X: x, Y: trY(m + ep.bar[i])})
		c.Stroke(p)
	}
	for i, m := range ep.mean {
		c.DrawGlyph(ep.glyph, vg.Point{X: trX(float64(i)), Y: trY(m)})
	}
}

// Estimates builds a credible interval plot
// of the estimates of a model parameter:
// the posterior mean of each coordinate,
// sorted by mean,
// with an error bar of numStd standard deviations.
// A parameter with more than one dimension
// beyond chain and draw
// must be reduced to a single dimension
// with the sel selection,
// a map of dimension names to coordinate labels.
func Estimates(d *inference.Data, parameter string, sel map[string]string, numStd float64) (*plot.Plot, error) {
	if d == nil || d.Posterior == nil {
		return nil, fmt.Errorf("data without a posterior group")
	}
	a := d.Posterior.Array(parameter)
	if a == nil {
		return nil, fmt.Errorf("unknown parameter %q", parameter)
	}
	if len(a.Dims()) > 3 && len(sel) == 0 {
		return nil, fmt.Errorf("parameter %q: a coordinate selection is required for a multi-dimensional parameter", parameter)
	}

	var err error
	for dim, label := range sel {
		a, err = a.Sel(dim, label)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %v", parameter, err)
		}
	}

	mean, err := a.Mean("chain", "draw")
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %v", parameter, err)
	}
	sd, err := a.StdDev("chain", "draw")
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %v", parameter, err)
	}
	if len(mean.Dims()) > 1 {
		return nil, fmt.Errorf("parameter %q: a coordinate selection is required for a multi-dimensional parameter", parameter)
	}
	if numStd <= 0 {
		numStd = 1
	}

	ms := append([]float64{}, mean.Values()...)
	bar := append([]float64{}, sd.Values()...)
	idx := make([]int, len(ms))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return ms[idx[i]] < ms[idx[j]] })

	ep := &estimatesPlot{
		mean:  make([]float64, len(ms)),
		bar:   make([]float64, len(ms)),
		line:  plotter.DefaultLineStyle,
		glyph: plotter.DefaultGlyphStyle,
	}
	for i, x := range idx {
		ep.mean[i] = ms[x]
		ep.bar[i] = bar[x] * numStd
	}

	p := plot.New()
	p.X.Label.Text = "feature"
	p.Y.Label.Text = "differential"
	p.Add(ep)
	return p, nil
}

// A ppcPlot is a plot of sorted observed counts
// over the posterior predictive mean
// and its 95% credible interval.
type ppcPlot struct {
	obs   []float64
	mean  []float64
	lower []float64
	upper []float64
	line  draw.LineStyle
	glyph draw.GlyphStyle
}

// DataRange implements the plot.DataRanger interface.
func (pp *ppcPlot) DataRange() (xMin, xMax, yMin, yMax float64) {
	yMin = math.Inf(1)
	yMax = math.Inf(-1)
	for i, o := range pp.obs {
		if pp.lower[i] < yMin {
			yMin = pp.lower[i]
		}
		if o < yMin {
			yMin = o
		}
		if pp.upper[i] > yMax {
			yMax = pp.upper[i]
		}
		if o > yMax {
			yMax = o
		}
	}
	return -1, float64(len(pp.obs)), yMin, yMax
}

// Plot implements the plot.Plotter interface.
func (pp *ppcPlot) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	ci := pp.line
	ci.Color = color.RGBA{211, 211, 211, 255}
	c.SetLineStyle(ci)
	for i := range pp.obs {
		x := trX(float64(i))
		var p vg.Path
		p.Move(vg.Point{X: x, Y: trY(pp.lower[i])})
		p.Line(vg.Point{X: x, Y: trY(pp.upper[i])})
		c.Stroke(p)
	}

	g := pp.glyph
	g.Color = color.RGBA{128, 128, 128, 255}
	for i, m := range pp.mean {
		c.DrawGlyph(g, vg.Point{X: trX(float64(i)), Y: trY(m)})
	}

	c.SetLineStyle(pp.line)
	var p vg.Path
	for i, o := range pp.obs {
		pt := vg.Point{X: trX(float64(i)), Y: trY(o)}
		if i == 0 {
			p.Move(pt)
			continue
		}
		p.Line(pt)
	}
	c.Stroke(p)
}

// PPC builds a posterior predictive check plot:
// the observed counts,
// sorted in ascending order,
// over the posterior predictive mean
// and 95% credible interval
// of each table entry.
// The plot title reports the percentage
// of observations inside the interval.
func PPC(d *inference.Data) (*plot.Plot, error) {
	if d == nil || d.PosteriorPredictive == nil || d.PosteriorPredictive.Len() == 0 {
		return nil, fmt.Errorf("data without a posterior predictive group")
	}
	if d.ObservedData == nil || d.ObservedData.Len() == 0 {
		return nil, fmt.Errorf("data without an observed data group")
	}

	a := d.PosteriorPredictive.Array(d.PosteriorPredictive.Vars()[0])
	obsArr := d.ObservedData.Array(d.ObservedData.Vars()[0])

	mean, err := a.Mean("chain", "draw")
	if err != nil {
		return nil, err
	}
	lower, err := a.Quantile(0.025, "chain", "draw")
	if err != nil {
		return nil, err
	}
	upper, err := a.Quantile(0.975, "chain", "draw")
	if err != nil {
		return nil, err
	}

	obs := obsArr.Values()
	ms := mean.Values()
	lo := lower.Values()
	up := upper.Values()
	if len(obs) != len(ms) {
		return nil, fmt.Errorf("got %d observations, want %d", len(obs), len(ms))
	}

	in := 0
	for i, o := range obs {
		if o > lo[i] && o < up[i] {
			in++
		}
	}
	pct := float64(in) / float64(len(obs)) * 100

	idx := make([]int, len(obs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return obs[idx[i]] < obs[idx[j]] })

	pp := &ppcPlot{
		obs:   make([]float64, len(obs)),
		mean:  make([]float64, len(obs)),
		lower: make([]float64, len(obs)),
		upper: make([]float64, len(obs)),
		line:  plotter.DefaultLineStyle,
		glyph: plotter.DefaultGlyphStyle,
	}
	for i, x := range idx {
		pp.obs[i] = obs[x]
		pp.mean[i] = ms[x]
		pp.lower[i] = lo[x]
		pp.upper[i] = up[x]
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%.2f%% of predictions in 95%% credible interval", pct)
	p.X.Label.Text = "table entry"
	p.Y.Label.Text = "count"
	p.Add(pp)
	return p, nil
}
