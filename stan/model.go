// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package stan

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// A Model is a compiled Stan program,
// ready to be sampled.
type Model struct {
	name string
	bin  string
}

// Compile builds an executable model
// from the source of a Stan program.
//
// The program source is stored as "<name>.stan"
// in the dir directory
// and compiled with the make toolchain
// of a CmdStan installation
// rooted at cmdStan.
// A compiled binary
// newer than the program source
// is reused without rebuilding.
func Compile(ctx context.Context, cmdStan, dir, name string, src []byte) (*Model, error) {
	if cmdStan == "" {
		return nil, fmt.Errorf("undefined CmdStan path")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("model without name")
	}

	stF := filepath.Join(dir, name+".stan")
	if err := writeSource(stF, src); err != nil {
		return nil, err
	}

	bin, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("model %q: %v", name, err)
	}
	m := &Model{
		name: name,
		bin:  bin,
	}
	if upToDate(bin, stF) {
		return m, nil
	}

	cmd := exec.CommandContext(ctx, "make", bin)
	cmd.Dir = cmdStan
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("model %q: while compiling: %v: %s", name, err, out.String())
	}
	return m, nil
}

// WriteSource stores a program source,
// keeping an identical stored copy untouched
// so its compiled binary stays up to date.
func writeSource(name string, src []byte) error {
	if prev, err := os.ReadFile(name); err == nil {
		if bytes.Equal(prev, src) {
			return nil
		}
	}
	if err := os.WriteFile(name, src, 0644); err != nil {
		return fmt.Errorf("while writing program: %v", err)
	}
	return nil
}

// UpToDate returns true if a compiled binary
// is newer than its program source.
func upToDate(bin, src string) bool {
	bi, err := os.Stat(bin)
	if err != nil {
		return false
	}
	si, err := os.Stat(src)
	if err != nil {
		return false
	}
	return bi.ModTime().After(si.ModTime())
}

// Name returns the name of the model.
func (m *Model) Name() string {
	return m.name
}

// SampleParam are the parameters of a sampler run.
type SampleParam struct {
	// Chains is the number of Markov chains.
	Chains int

	// Iter is the number of posterior draws
	// sampled per chain.
	// The same number of draws
	// is used for the warmup.
	Iter int

	// Seed is the seed
	// of the pseudo-random number generator
	// of the sampler.
	Seed int64

	// Data is the name of a JSON data file
	// with the input data of the run.
	Data string

	// Dir is the directory
	// for the output files of the run.
	Dir string

	// Prefix is the name prefix
	// of the output files of the run.
	Prefix string
}

// Sample runs the sampler of a compiled model,
// one process per chain,
// and returns the posterior draws
// of all chains.
// Chains run concurrently.
func (m *Model) Sample(ctx context.Context, p SampleParam) (*Fit, error) {
	if p.Chains < 1 {
		p.Chains = 4
	}
	if p.Iter < 1 {
		p.Iter = 2000
	}
	if p.Seed == 0 {
		p.Seed = 42
	}
	prefix := p.Prefix
	if prefix == "" {
		prefix = m.name
	}

	outs := make([]string, p.Chains)
	errs := make([]error, p.Chains)
	var wg sync.WaitGroup
	for c := 0; c < p.Chains; c++ {
		id := c + 1
		outs[c] = filepath.Join(p.Dir, fmt.Sprintf("%s-%d.csv", prefix, id))

		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			errs[c] = m.runChain(ctx, p, id, outs[c])
		}(c)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	f, err := ReadFiles(outs...)
	if err != nil {
		return nil, fmt.Errorf("model %q: %v", m.name, err)
	}
	return f, nil
}

// RunChain runs the sampler process of a single chain.
func (m *Model) runChain(ctx context.Context, p SampleParam, id int, out string) error {
	args := []string{
		"sample",
		"num_samples=" + strconv.Itoa(p.Iter),
		"num_warmup=" + strconv.Itoa(p.Iter),
		"random", "seed=" + strconv.FormatInt(p.Seed, 10),
		"id=" + strconv.Itoa(id),
		"data", "file=" + p.Data,
		"output", "file=" + out,
	}

	cmd := exec.CommandContext(ctx, m.bin, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("model %q: chain %d: %v: %s", m.name, id, err, buf.String())
	}
	return nil
}
