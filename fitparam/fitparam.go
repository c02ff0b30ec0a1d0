// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package fitparam implements reading and writing
// of the sampling parameters
// used when fitting a model.
package fitparam

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Param is a keyword to identify
// the type of parameter in a fitParam file.
type Param string

// Valid parameters
const (
	// Chains is the number of Markov chains
	// to be run.
	Chains Param = "chains"

	// Iter is the number of posterior draws
	// sampled per chain.
	Iter Param = "iter"

	// Seed is the seed
	// of the pseudo-random number generator
	// of the sampler.
	Seed Param = "seed"

	// BetaPrior is the standard deviation
	// of the normal prior
	// of the model coefficients.
	BetaPrior Param = "betaprior"

	// CauchyScale is the scale
	// of the half-Cauchy prior
	// of the dispersion parameters.
	CauchyScale Param = "cauchyscale"
)

// FP represents a collection of sampling parameters.
type FP struct {
	name string // file name

	// sampler run
	chains int
	iter   int
	seed   int64

	// priors
	beta   float64
	cauchy float64
}

// New creates a new parameter collection
// with the default values.
func New(name string) *FP {
	return &FP{
		name:   name,
		chains: 4,
		iter:   2000,
		seed:   42,
		beta:   5,
		cauchy: 5,
	}
}

var header = []string{
	"parameter",
	"value",
}

// Read reads a fitParam file from a TSV file.
//
// The TSV must contains the following fields:
//
//   - parameter, the name of the parameter
//   - value, the value of the parameter
//
// Here is an example file:
//
//	# micdiff sampling parameters
//	parameter	value
//	chains	4
//	iter	2000
//	seed	42
//	betaprior	5
//	cauchyscale	5
func Read(name string) (*FP, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tsv := csv.NewReader(f)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("on file %q: header: %v", name, err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("on file %q: expecting field %q", name, h)
		}
	}

	fp := New(name)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}

		f := "parameter"
		p := Param(strings.ToLower(row[fields[f]]))

		f = "value"
		switch p {
		case Chains:
			c, err := strconv.Atoi(row[fields[f]])
			if err != nil {
				return nil, fmt.Errorf("on file %q: on row %d, field %q: %v", name, ln, f, err)
			}
			if err := fp.SetChains(c); err != nil {
				return nil, fmt.Errorf("on file %q: on row %d, field %q: %v", name, ln, f, err)
			}
		case Iter:
			i, err := strconv.Atoi(row[fields[f]])
			if err != nil {
				return nil, fmt.Errorf("on file %q: on row %d, field %q: %v", name, ln, f, err)
			}
			if err := fp.SetIter(i); err != nil {
				return nil, fmt.Errorf("on file %q: on row %d, field %q: %v", name, ln, f, err)
			}
		case Seed:
			s, err := strconv.ParseInt(row[fields[f]], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("on file %q: on row %d, field %q: %v", name, ln, f, err)
			}
			fp.SetSeed(s)
		case BetaPrior:
			b, err := strconv.ParseFloat(row[fields[f]], 64)
			if err != nil {
				return nil, fmt.Errorf("on file %q: on row %d, field %q: %v", name, ln, f, err)
			}
			if err := fp.SetBetaPrior(b); err != nil {
				return nil, fmt.Errorf("on file %q: on row %d, field %q: %v", name, ln, f, err)
			}
		case CauchyScale:
			s, err := strconv.ParseFloat(row[fields[f]], 64)
			if err != nil {
				return nil, fmt.Errorf("on file %q: on row %d, field %q: %v", name, ln, f, err)
			}
			if err := fp.SetCauchyScale(s); err != nil {
				return nil, fmt.Errorf("on file %q: on row %d, field %q: %v", name, ln, f, err)
			}
		}
	}
	return fp, nil
}

// BetaPrior returns the standard deviation
// of the normal prior
// of the model coefficients.
func (fp *FP) BetaPrior() float64 {
	return fp.beta
}

// CauchyScale returns the scale
// of the half-Cauchy prior
// of the dispersion parameters.
func (fp *FP) CauchyScale() float64 {
	return fp.cauchy
}

// Chains returns the number of Markov chains.
func (fp *FP) Chains() int {
	return fp.chains
}

// Iter returns the number of posterior draws
// sampled per chain.
func (fp *FP) Iter() int {
	return fp.iter
}

// Name returns the name used for a set
// of sampling parameters.
func (fp *FP) Name() string {
	return fp.name
}

// Seed returns the seed of the sampler.
func (fp *FP) Seed() int64 {
	return fp.seed
}

// SetBetaPrior sets the standard deviation
// of the normal prior
// of the model coefficients.
func (fp *FP) SetBetaPrior(b float64) error {
	if b <= 0 {
		return fmt.Errorf("invalid beta prior value: %.6f", b)
	}
	fp.beta = b
	return nil
}

// SetCauchyScale sets the scale
// of the half-Cauchy prior
// of the dispersion parameters.
func (fp *FP) SetCauchyScale(s float64) error {
	if s <= 0 {
		return fmt.Errorf("invalid Cauchy scale value: %.6f", s)
	}
	fp.cauchy = s
	return nil
}

// SetChains sets the number of Markov chains.
func (fp *FP) SetChains(c int) error {
	if c < 1 {
		return fmt.Errorf("invalid number of chains: %d", c)
	}
	fp.chains = c
	return nil
}

// SetIter sets the number of posterior draws
// sampled per chain.
func (fp *FP) SetIter(i int) error {
	if i < 1 {
		return fmt.Errorf("invalid number of iterations: %d", i)
	}
	fp.iter = i
	return nil
}

// SetName sets the name of a parameter collection.
func (fp *FP) SetName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	fp.name = name
}

// SetSeed sets the seed of the sampler.
func (fp *FP) SetSeed(s int64) {
	fp.seed = s
}

// Write writes a parameter collection into a file.
func (fp *FP) Write() (err error) {
	f, err := os.Create(fp.name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# micdiff sampling parameters\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", fp.name, err)
	}

	rows := [][]string{
		{string(Chains), strconv.Itoa(fp.chains)},
		{string(Iter), strconv.Itoa(fp.iter)},
		{string(Seed), strconv.FormatInt(fp.seed, 10)},
		{string(BetaPrior), strconv.FormatFloat(fp.beta, 'f', -1, 64)},
		{string(CauchyScale), strconv.FormatFloat(fp.cauchy, 'f', -1, 64)},
	}
	for _, row := range rows {
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("on file %q: %v", fp.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", fp.name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", fp.name, err)
	}
	return nil
}
