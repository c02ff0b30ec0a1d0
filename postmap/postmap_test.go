// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package postmap_test

import (
	"image/color"
	"reflect"
	"testing"

	"github.com/js-arias/micdiff/inference"
	"github.com/js-arias/micdiff/postmap"
)

func TestImage(t *testing.T) {
	img := &postmap.Image{
		Means: [][]float64{
			{-2, 1},
			{0, 2},
			{-1, 0.5},
		},
		Gradient: postmap.LightGrayScale{},
	}
	img.Format()

	if g := img.Cell; g != 16 {
		t.Errorf("image: cell size: got %d, want %d", g, 16)
	}
	b := img.Bounds()
	if b.Dx() != 32 || b.Dy() != 48 {
		t.Errorf("image: bounds: got %dx%d, want %dx%d", b.Dx(), b.Dy(), 32, 48)
	}

	tests := map[string]struct {
		x, y int
		want color.RGBA
	}{
		"most negative": {x: 8, y: 8, want: color.RGBA{200, 200, 200, 255}},
		"most positive": {x: 24, y: 24, want: color.RGBA{0, 0, 0, 255}},
		"zero":          {x: 8, y: 24, want: color.RGBA{100, 100, 100, 255}},
		"positive":      {x: 24, y: 8, want: color.RGBA{50, 50, 50, 255}},
	}
	for name, test := range tests {
		if g := img.At(test.x, test.y); g != test.want {
			t.Errorf("image %s: got %v, want %v", name, g, test.want)
		}
	}
}

func TestImageDefaults(t *testing.T) {
	img := &postmap.Image{
		Means: [][]float64{{0, 0}},
	}
	img.Format()

	if img.Gradient == nil {
		t.Fatalf("image: expecting a default gradient")
	}
	r1, g1, b1, a1 := img.At(8, 8).RGBA()
	r2, g2, b2, a2 := img.At(24, 8).RGBA()
	if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
		t.Errorf("image: equal values with different colors")
	}
}

func TestMean(t *testing.T) {
	d := newData(t)

	ms, rows, cols, err := postmap.Mean(d, "beta")
	if err != nil {
		t.Fatalf("mean: unexpected error: %v", err)
	}
	want := [][]float64{
		{9, 12},
		{10, 13},
		{11, 14},
	}
	if !reflect.DeepEqual(ms, want) {
		t.Errorf("mean: got %v, want %v", ms, want)
	}
	if w := []string{"otu1", "otu2", "otu3"}; !reflect.DeepEqual(rows, w) {
		t.Errorf("mean: rows: got %v, want %v", rows, w)
	}
	if w := []string{"Intercept", "diet[T.herbivore]"}; !reflect.DeepEqual(cols, w) {
		t.Errorf("mean: columns: got %v, want %v", cols, w)
	}

	ms, rows, cols, err = postmap.Mean(d, "phi")
	if err != nil {
		t.Fatalf("mean: unexpected error: %v", err)
	}
	want = [][]float64{{5}, {1}, {3}}
	if !reflect.DeepEqual(ms, want) {
		t.Errorf("mean: got %v, want %v", ms, want)
	}
	if w := []string{"otu1", "otu2", "otu3"}; !reflect.DeepEqual(rows, w) {
		t.Errorf("mean: rows: got %v, want %v", rows, w)
	}
	if w := []string{"phi"}; !reflect.DeepEqual(cols, w) {
		t.Errorf("mean: columns: got %v, want %v", cols, w)
	}
}

func TestMeanError(t *testing.T) {
	d := newData(t)

	if _, _, _, err := postmap.Mean(nil, "beta"); err == nil {
		t.Errorf("mean: expecting error for nil data")
	}
	if _, _, _, err := postmap.Mean(d, "gamma"); err == nil {
		t.Errorf("mean: expecting error for an unknown parameter")
	}
	if _, _, _, err := postmap.Mean(d, "theta"); err == nil {
		t.Errorf("mean: expecting error for a parameter with too many dimensions")
	}
}

// NewData creates inference data
// with two chains and two draws per chain,
// three features,
// and two covariates.
func newData(t testing.TB) *inference.Data {
	t.Helper()

	features := []string{"otu1", "otu2", "otu3"}
	covs := []string{"Intercept", "diet[T.herbivore]"}

	post := inference.NewDataset()

	beta := make([]float64, 2*2*2*3)
	for i := range beta {
		beta[i] = float64(i)
	}
	a, err := inference.NewArray(beta, []string{"chain", "draw", "covariate", "feature"}, []int{2, 2, 2, 3}, map[string][]string{"covariate": covs, "feature": features})
	if err != nil {
		t.Fatalf("beta: unexpected error: %v", err)
	}
	post.Add("beta", a)

	phi := make([]float64, 0, 12)
	for _, cd := range []float64{-1, 0, 0, 1} {
		for _, b := range []float64{5, 1, 3} {
			phi = append(phi, b+cd)
		}
	}
	a, err = inference.NewArray(phi, []string{"chain", "draw", "feature"}, []int{2, 2, 3}, map[string][]string{"feature": features})
	if err != nil {
		t.Fatalf("phi: unexpected error: %v", err)
	}
	post.Add("phi", a)

	theta := make([]float64, 8)
	a, err = inference.NewArray(theta, []string{"chain", "draw", "group", "covariate", "feature"}, []int{1, 1, 2, 2, 2}, nil)
	if err != nil {
		t.Fatalf("theta: unexpected error: %v", err)
	}
	post.Add("theta", a)

	return &inference.Data{Posterior: post}
}
