// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package inference

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Summary writes a TSV table
// with summary statistics
// for each variable of a dataset.
// For every combination of coordinates,
// the mean,
// standard deviation,
// 2.5%, 50%, and 97.5% quantiles,
// and the split R-hat convergence statistic
// are calculated over the chain and draw dimensions.
// Every variable of the dataset
// must have chain and draw dimensions.
func Summary(w io.Writer, ds *Dataset) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := []string{
		"variable",
		"coordinate",
		"mean",
		"stddev",
		"q2.5",
		"median",
		"q97.5",
		"rhat",
	}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, v := range ds.Vars() {
		if err := summaryVar(tab, v, ds.Array(v)); err != nil {
			return err
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}

func summaryVar(tab *csv.Writer, v string, a *Array) error {
	pc := slices.Index(a.dims, "chain")
	pd := slices.Index(a.dims, "draw")
	if pc < 0 || pd < 0 {
		return fmt.Errorf("variable %q: without chain and draw dimensions", v)
	}
	chains := a.shape[pc]
	draws := a.shape[pd]

	var keep []int
	for i := range a.dims {
		if i == pc || i == pd {
			continue
		}
		keep = append(keep, i)
	}
	coords := make([][]string, len(keep))
	for i, p := range keep {
		coords[i] = a.Coords(a.dims[p])
	}

	cells := 1
	for _, p := range keep {
		cells *= a.shape[p]
	}

	buf := make([]float64, chains*draws)
	labels := make([]string, len(keep))
	idx := make([]int, len(a.dims))
	for cell := 0; cell < cells; cell++ {
		// gather the values of the cell,
		// chain by chain
		for i := range buf {
			idx[pc] = i / draws
			idx[pd] = i % draws
			off := 0
			for j, x := range idx {
				off += x * a.stride[j]
			}
			buf[i] = a.data[off]
		}

		coord := "-"
		if len(keep) > 0 {
			for i, p := range keep {
				labels[i] = coords[i][idx[p]]
			}
			coord = strings.Join(labels, ":")
		}

		mean := stat.Mean(buf, nil)
		sd := stat.StdDev(buf, nil)
		rh := rhat(buf, chains, draws)
		slices.Sort(buf)
		row := []string{
			v,
			coord,
			strconv.FormatFloat(mean, 'f', 6, 64),
			strconv.FormatFloat(sd, 'f', 6, 64),
			strconv.FormatFloat(stat.Quantile(0.025, stat.Empirical, buf, nil), 'f', 6, 64),
			strconv.FormatFloat(stat.Quantile(0.5, stat.Empirical, buf, nil), 'f', 6, 64),
			strconv.FormatFloat(stat.Quantile(0.975, stat.Empirical, buf, nil), 'f', 6, 64),
			strconv.FormatFloat(rh, 'f', 6, 64),
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("when writing data: %v", err)
		}

		for i := len(keep) - 1; i >= 0; i-- {
			p := keep[i]
			idx[p]++
			if idx[p] < a.shape[p] {
				break
			}
			idx[p] = 0
		}
	}
	return nil
}

// Rhat returns the split R-hat convergence statistic
// for the draws of a cell,
// stored chain by chain.
// Each chain is split in two halves,
// so poor mixing within a chain
// is also detected.
// Values near one indicate convergence.
func rhat(x []float64, chains, draws int) float64 {
	half := draws / 2
	if half < 2 {
		return math.NaN()
	}

	means := make([]float64, 0, chains*2)
	vars := make([]float64, 0, chains*2)
	for c := 0; c < chains; c++ {
		for h := 0; h < 2; h++ {
			s := x[c*draws+h*half : c*draws+(h+1)*half]
			means = append(means, stat.Mean(s, nil))
			vars = append(vars, stat.Variance(s, nil))
		}
	}

	w := stat.Mean(vars, nil)
	if w == 0 {
		return math.NaN()
	}
	b := stat.Variance(means, nil) * float64(half)
	v := float64(half-1)/float64(half)*w + b/float64(half)
	return math.Sqrt(v / w)
}
