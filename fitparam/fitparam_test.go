// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package fitparam_test

import (
	"os"
	"testing"

	"github.com/js-arias/micdiff/fitparam"
)

func TestFitParam(t *testing.T) {
	name := "tmp-fit-parameters-for-test.tab"
	fp := fitparam.New(name)
	testFP(t, fp, nil, name)

	fp.SetChains(2)
	fp.SetIter(500)
	fp.SetSeed(1701)
	fp.SetBetaPrior(2.5)
	fp.SetCauchyScale(3)

	defer os.Remove(name)
	if err := fp.Write(); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	np, err := fitparam.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	testFP(t, np, fp, name)
}

func TestFitParamSetError(t *testing.T) {
	fp := fitparam.New("params.tab")

	if err := fp.SetChains(0); err == nil {
		t.Errorf("chains: expecting error")
	}
	if err := fp.SetIter(-10); err == nil {
		t.Errorf("iter: expecting error")
	}
	if err := fp.SetBetaPrior(0); err == nil {
		t.Errorf("beta prior: expecting error")
	}
	if err := fp.SetCauchyScale(-1); err == nil {
		t.Errorf("Cauchy scale: expecting error")
	}

	def := fitparam.New("params.tab")
	testFP(t, fp, def, "params.tab")
}

func testFP(t testing.TB, fp, want *fitparam.FP, name string) {
	t.Helper()

	if want == nil {
		want = fitparam.New(name)
	}

	if fp.Name() != want.Name() {
		t.Errorf("name: got %q, want %q", fp.Name(), want.Name())
	}
	if fp.Chains() != want.Chains() {
		t.Errorf("chains: got %d, want %d", fp.Chains(), want.Chains())
	}
	if fp.Iter() != want.Iter() {
		t.Errorf("iter: got %d, want %d", fp.Iter(), want.Iter())
	}
	if fp.Seed() != want.Seed() {
		t.Errorf("seed: got %d, want %d", fp.Seed(), want.Seed())
	}
	if fp.BetaPrior() != want.BetaPrior() {
		t.Errorf("beta prior: got %.6f, want %.6f", fp.BetaPrior(), want.BetaPrior())
	}
	if fp.CauchyScale() != want.CauchyScale() {
		t.Errorf("Cauchy scale: got %.6f, want %.6f", fp.CauchyScale(), want.CauchyScale())
	}
}
