// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package counts_test

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/micdiff/counts"
)

func newMatrix() *counts.Matrix {
	m := counts.New()

	m.Add("ASV0001", "sample1", 153)
	m.Add("ASV0001", "sample2", 12)
	m.Add("ASV0002", "sample2", 780)
	m.Add("ASV0003", "sample1", 41)
	m.Add("ASV0003", "sample3", 0.5)
	return m
}

func TestMatrix(t *testing.T) {
	m := newMatrix()
	testMatrix(t, "new matrix", m)
}

func TestMatrixTSV(t *testing.T) {
	m := newMatrix()

	var w bytes.Buffer
	if err := m.TSV(&w); err != nil {
		t.Fatalf("unable to write TSV data: %v", err)
	}
	t.Logf("output:\n%s\n", w.String())

	r := strings.NewReader(w.String())
	nm := counts.New()
	if err := nm.ReadTSV(r); err != nil {
		t.Fatalf("unable to read TSV data: %v", err)
	}

	testMatrix(t, "matrix tsv", nm)
}

func TestMatrixTSVError(t *testing.T) {
	tests := map[string]string{
		"bad header":   "feature\tcount\nASV0001\t10\n",
		"bad count":    "feature\tsample\tcount\nASV0001\tsample1\tmany\n",
		"negative":     "feature\tsample\tcount\nASV0001\tsample1\t-10\n",
		"not a number": "feature\tsample\tcount\nASV0001\tsample1\tNaN\n",
	}

	for name, data := range tests {
		m := counts.New()
		if err := m.ReadTSV(strings.NewReader(data)); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}
}

func testMatrix(t testing.TB, name string, m *counts.Matrix) {
	t.Helper()

	features := []string{"ASV0001", "ASV0002", "ASV0003"}
	if g := m.Features(); !reflect.DeepEqual(g, features) {
		t.Errorf("%s: features: got %v, want %v", name, g, features)
	}
	samples := []string{"sample1", "sample2", "sample3"}
	if g := m.Samples(); !reflect.DeepEqual(g, samples) {
		t.Errorf("%s: samples: got %v, want %v", name, g, samples)
	}

	cs := map[string]map[string]float64{
		"ASV0001": {"sample1": 153, "sample2": 12, "sample3": 0},
		"ASV0002": {"sample1": 0, "sample2": 780, "sample3": 0},
		"ASV0003": {"sample1": 41, "sample2": 0, "sample3": 0.5},
	}
	for f, sc := range cs {
		for s, c := range sc {
			if g := m.Counts(f, s); g != c {
				t.Errorf("%s: counts of %q-%q: got %.6f, want %.6f", name, f, s, g, c)
			}
		}
	}

	fTot := []float64{165, 780, 41.5}
	if g := m.FeatureTotals(); !equalFloats(g, fTot) {
		t.Errorf("%s: feature totals: got %v, want %v", name, g, fTot)
	}
	sTot := []float64{194, 792, 0.5}
	if g := m.SampleTotals(); !equalFloats(g, sTot) {
		t.Errorf("%s: sample totals: got %v, want %v", name, g, sTot)
	}

	d := m.Dense()
	r, c := d.Dims()
	if r != 3 || c != 3 {
		t.Errorf("%s: dense size: got %d,%d, want 3,3", name, r, c)
	}
	for f, feature := range features {
		for s, sample := range samples {
			if g := d.At(f, s); g != m.Counts(feature, sample) {
				t.Errorf("%s: dense %d,%d: got %.6f, want %.6f", name, f, s, g, m.Counts(feature, sample))
			}
		}
	}
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if math.Abs(v-b[i]) > 1e-10 {
			return false
		}
	}
	return true
}
