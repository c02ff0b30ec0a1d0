// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package counts provides a feature-by-sample count table,
// the standard input of a differential abundance analysis.
// Features are taxa,
// sequence variants,
// or any other countable unit,
// and samples are the sequenced communities.
package counts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// A Matrix is a table of counts
// indexed by feature and sample.
// Counts are stored as float64 values,
// so fractional counts
// from normalized or rarefied tables
// are also accepted.
type Matrix struct {
	features map[string]int
	samples  map[string]int
	fNames   []string
	sNames   []string
	m        [][]float64
}

// New creates a new empty count matrix.
func New() *Matrix {
	return &Matrix{
		features: make(map[string]int),
		samples:  make(map[string]int),
	}
}

// Add adds a count for a feature-sample pair,
// creating the feature and the sample
// if they are not already in the matrix.
// Adding a pair a second time
// replaces the stored count.
func (m *Matrix) Add(feature, sample string, count float64) {
	feature = strings.TrimSpace(feature)
	if feature == "" {
		return
	}
	sample = strings.TrimSpace(sample)
	if sample == "" {
		return
	}

	f, ok := m.features[feature]
	if !ok {
		f = len(m.fNames)
		m.features[feature] = f
		m.fNames = append(m.fNames, feature)
		m.m = append(m.m, make([]float64, len(m.sNames)))
	}
	s, ok := m.samples[sample]
	if !ok {
		s = len(m.sNames)
		m.samples[sample] = s
		m.sNames = append(m.sNames, sample)
		for i := range m.m {
			m.m[i] = append(m.m[i], 0)
		}
	}

	m.m[f][s] = count
}

// Counts returns the count
// of a feature-sample pair.
func (m *Matrix) Counts(feature, sample string) float64 {
	f, ok := m.features[strings.TrimSpace(feature)]
	if !ok {
		return 0
	}
	s, ok := m.samples[strings.TrimSpace(sample)]
	if !ok {
		return 0
	}
	return m.m[f][s]
}

// Features returns the features of the matrix,
// in the order in which they were added.
func (m *Matrix) Features() []string {
	return append([]string{}, m.fNames...)
}

// Samples returns the samples of the matrix,
// in the order in which they were added.
func (m *Matrix) Samples() []string {
	return append([]string{}, m.sNames...)
}

// FeatureTotals returns the sum of the counts
// of each feature over all samples,
// in feature order.
func (m *Matrix) FeatureTotals() []float64 {
	t := make([]float64, len(m.fNames))
	for f, r := range m.m {
		for _, c := range r {
			t[f] += c
		}
	}
	return t
}

// SampleTotals returns the sum of the counts
// of each sample over all features,
// in sample order.
// Sample totals are the sequencing depths
// used as offsets in count models.
func (m *Matrix) SampleTotals() []float64 {
	t := make([]float64, len(m.sNames))
	for _, r := range m.m {
		for s, c := range r {
			t[s] += c
		}
	}
	return t
}

// Dense returns the counts as a dense matrix
// with features as rows
// and samples as columns.
func (m *Matrix) Dense() *mat.Dense {
	if len(m.fNames) == 0 || len(m.sNames) == 0 {
		return nil
	}
	d := mat.NewDense(len(m.fNames), len(m.sNames), nil)
	for f, r := range m.m {
		d.SetRow(f, r)
	}
	return d
}

// ReadTSV reads a count matrix from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - feature, the name of a feature
//   - sample, the name of a sample
//   - count, the count of the feature-sample pair
//
// Pairs not present in the file
// are set to zero.
// Here is an example file:
//
//	feature	sample	count
//	ASV0001	sample1	153
//	ASV0001	sample2	12
//	ASV0002	sample1	0
//	ASV0002	sample2	780
func (m *Matrix) ReadTSV(r io.Reader) error {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range []string{"feature", "sample", "count"} {
		if _, ok := fields[h]; !ok {
			return fmt.Errorf("expecting field %q", h)
		}
	}

	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "feature"
		feature := row[fields[f]]

		f = "sample"
		sample := row[fields[f]]

		f = "count"
		c, err := strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return fmt.Errorf("on row %d: field %q: %q: %v", ln, f, row[fields[f]], err)
		}
		if c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("on row %d: field %q: invalid count %q", ln, f, row[fields[f]])
		}

		m.Add(feature, sample, c)
	}
	return nil
}

// TSV writes a count matrix to a TSV file.
func (m *Matrix) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := []string{"feature", "sample", "count"}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for f, feature := range m.fNames {
		for s, sample := range m.sNames {
			row := []string{
				feature,
				sample,
				strconv.FormatFloat(m.m[f][s], 'f', -1, 64),
			}
			if err := tab.Write(row); err != nil {
				return fmt.Errorf("when writing data: %v", err)
			}
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
