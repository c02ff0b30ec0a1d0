// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package compos_test

import (
	"errors"
	"math"
	"testing"

	"github.com/js-arias/micdiff/compos"
)

func TestALRToCLR(t *testing.T) {
	alr := [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	}

	clr, err := compos.ALRToCLR(alr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(clr) != len(alr)+1 {
		t.Fatalf("categories: got %d, want %d", len(clr), len(alr)+1)
	}

	want := [][]float64{
		{-5.0 / 3, -7.0 / 3, -3},
		{-2.0 / 3, -1.0 / 3, 0},
		{7.0 / 3, 8.0 / 3, 3},
	}
	testMatrix(t, "alr to clr", clr, want)

	// each draw must sum to zero
	for d := 0; d < 3; d++ {
		var sum float64
		for _, r := range clr {
			sum += r[d]
		}
		if math.Abs(sum) > 1e-10 {
			t.Errorf("draw %d: sum: got %.6f, want 0", d, sum)
		}
	}

	// differences between categories must be preserved
	for d := 0; d < 3; d++ {
		got := clr[2][d] - clr[1][d]
		want := alr[1][d] - alr[0][d]
		if math.Abs(got-want) > 1e-10 {
			t.Errorf("draw %d: difference: got %.6f, want %.6f", d, got, want)
		}
	}
}

func TestCLRToALR(t *testing.T) {
	alr := [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	}

	clr, err := compos.ALRToCLR(alr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := compos.CLRToALR(clr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testMatrix(t, "round trip", got, alr)
}

func TestConvertBetaCoordinates(t *testing.T) {
	beta := [][][]float64{
		{
			{0.5, -0.25},
			{1.5, 0.75},
		},
		{
			{-1, 2},
			{3, -4},
		},
	}

	clr, err := compos.ConvertBetaCoordinates(beta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(clr) != len(beta) {
		t.Fatalf("covariates: got %d, want %d", len(clr), len(beta))
	}
	for i, s := range clr {
		if len(s) != len(beta[i])+1 {
			t.Errorf("covariate %d: categories: got %d, want %d", i, len(s), len(beta[i])+1)
		}
		for d := 0; d < 2; d++ {
			var sum float64
			for _, r := range s {
				sum += r[d]
			}
			if math.Abs(sum) > 1e-10 {
				t.Errorf("covariate %d: draw %d: sum: got %.6f, want 0", i, d, sum)
			}
		}

		want, err := compos.ALRToCLR(beta[i])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testMatrix(t, "per covariate", s, want)
	}

	// the input must be untouched
	want := [][][]float64{
		{
			{0.5, -0.25},
			{1.5, 0.75},
		},
		{
			{-1, 2},
			{3, -4},
		},
	}
	for i, s := range beta {
		testMatrix(t, "input", s, want[i])
	}
}

func TestShapeError(t *testing.T) {
	tests := map[string][][]float64{
		"empty matrix": {},
		"empty rows":   {{}},
		"ragged rows": {
			{1, 2, 3},
			{4, 5},
		},
	}

	for name, x := range tests {
		if _, err := compos.ALRToCLR(x); !errors.Is(err, compos.ErrShape) {
			t.Errorf("%s: ALRToCLR: got error %v, want %v", name, err, compos.ErrShape)
		}
		if _, err := compos.CLRToALR(x); !errors.Is(err, compos.ErrShape) {
			t.Errorf("%s: CLRToALR: got error %v, want %v", name, err, compos.ErrShape)
		}
	}

	if _, err := compos.CLRToALR([][]float64{{1, 2, 3}}); !errors.Is(err, compos.ErrShape) {
		t.Errorf("single row: CLRToALR: got error %v, want %v", err, compos.ErrShape)
	}

	if _, err := compos.ConvertBetaCoordinates(nil); !errors.Is(err, compos.ErrShape) {
		t.Errorf("empty array: ConvertBetaCoordinates: got error %v, want %v", err, compos.ErrShape)
	}
	ragged := [][][]float64{
		{
			{1, 2},
			{3, 4},
		},
		{
			{1, 2},
		},
	}
	if _, err := compos.ConvertBetaCoordinates(ragged); !errors.Is(err, compos.ErrShape) {
		t.Errorf("ragged array: ConvertBetaCoordinates: got error %v, want %v", err, compos.ErrShape)
	}
}

func testMatrix(t testing.TB, name string, got, want [][]float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("%s: rows: got %d, want %d", name, len(got), len(want))
	}
	for i, r := range got {
		if len(r) != len(want[i]) {
			t.Fatalf("%s: row %d: columns: got %d, want %d", name, i, len(r), len(want[i]))
		}
		for j, v := range r {
			if math.Abs(v-want[i][j]) > 1e-10 {
				t.Errorf("%s: value %d,%d: got %.6f, want %.6f", name, i, j, v, want[i][j])
			}
		}
	}
}
