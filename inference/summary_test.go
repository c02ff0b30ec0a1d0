// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package inference_test

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
	"testing"

	"github.com/js-arias/micdiff/inference"
)

func TestSummary(t *testing.T) {
	// dimensions: chain (2), draw (4), feature (2);
	// gathered by chain,
	// feature sp1 takes values 1 to 8,
	// and feature sp2 the same values times 10
	data := make([]float64, 16)
	for i := 0; i < 8; i++ {
		data[i*2] = float64(i + 1)
		data[i*2+1] = float64(10 * (i + 1))
	}
	a, err := inference.NewArray(data, []string{"chain", "draw", "feature"}, []int{2, 4, 2}, map[string][]string{
		"feature": {"sp1", "sp2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ds := inference.NewDataset()
	ds.Add("phi", a)

	var w bytes.Buffer
	if err := inference.Summary(&w, ds); err != nil {
		t.Fatalf("unable to write summary: %v", err)
	}
	t.Logf("output:\n%s\n", w.String())

	tab := csv.NewReader(&w)
	tab.Comma = '\t'
	rows, err := tab.ReadAll()
	if err != nil {
		t.Fatalf("unable to read summary: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want %d", len(rows), 3)
	}

	want := []struct {
		variable string
		coord    string
		stats    []float64
	}{
		// mean, stddev, q2.5, median, q97.5, rhat
		{"phi", "sp1", []float64{4.5, math.Sqrt(6), 1, 4, 8, 3.719320}},
		{"phi", "sp2", []float64{45, 10 * math.Sqrt(6), 10, 40, 80, 3.719320}},
	}
	for i, r := range rows[1:] {
		if r[0] != want[i].variable {
			t.Errorf("row %d: variable: got %q, want %q", i, r[0], want[i].variable)
		}
		if r[1] != want[i].coord {
			t.Errorf("row %d: coordinate: got %q, want %q", i, r[1], want[i].coord)
		}
		for j, ws := range want[i].stats {
			g, err := strconv.ParseFloat(r[j+2], 64)
			if err != nil {
				t.Fatalf("row %d: field %d: %v", i, j+2, err)
			}
			if math.Abs(g-ws) > 0.0001 {
				t.Errorf("row %d: field %d: got %.6f, want %.6f", i, j+2, g, ws)
			}
		}
	}
}

func TestSummaryError(t *testing.T) {
	a, err := inference.NewArray([]float64{1, 2}, []string{"feature"}, []int{2}, map[string][]string{
		"feature": {"sp1", "sp2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ds := inference.NewDataset()
	ds.Add("phi", a)

	var w bytes.Buffer
	if err := inference.Summary(&w, ds); err == nil {
		t.Errorf("without chains: expecting error")
	}
}
