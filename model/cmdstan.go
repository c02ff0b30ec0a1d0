// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package model

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/js-arias/micdiff/stan"
)

var _ Sampler = (*CmdStan)(nil)

// CmdStan is a Sampler
// backed by a local CmdStan installation.
// It is safe for concurrent use.
type CmdStan struct {
	path string // CmdStan root
	dir  string // working directory

	mu     sync.Mutex
	models map[string]*stan.Model
}

// NewCmdStan creates a sampler
// backed by the CmdStan installation
// rooted at path,
// keeping the model programs,
// data files,
// and sampler outputs
// in the dir directory.
func NewCmdStan(path, dir string) *CmdStan {
	return &CmdStan{
		path:   path,
		dir:    dir,
		models: make(map[string]*stan.Model),
	}
}

// Sample compiles a model program,
// if not already compiled,
// and runs its sampler.
func (c *CmdStan) Sample(ctx context.Context, r Run) (*stan.Fit, error) {
	m, err := c.model(ctx, r.Name, r.Src)
	if err != nil {
		return nil, err
	}

	prefix := r.Prefix
	if prefix == "" {
		prefix = r.Name
	}
	dataF := filepath.Join(c.dir, prefix+"-data.json")
	if err := stan.WriteDataFile(dataF, r.Data); err != nil {
		return nil, err
	}

	return m.Sample(ctx, stan.SampleParam{
		Chains: r.Chains,
		Iter:   r.Iter,
		Seed:   r.Seed,
		Data:   dataF,
		Dir:    c.dir,
		Prefix: prefix,
	})
}

// Model returns the compiled model of a program,
// compiling it on its first use.
// Compilations are serialized,
// so concurrent runs of the same program
// build it only once.
func (c *CmdStan) model(ctx context.Context, name string, src []byte) (*stan.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.models[name]; ok {
		return m, nil
	}
	m, err := stan.Compile(ctx, c.path, c.dir, name, src)
	if err != nil {
		return nil, err
	}
	c.models[name] = m
	return m, nil
}
