// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"fmt"
	"os"

	"github.com/js-arias/micdiff/counts"
	"github.com/js-arias/micdiff/design"
	"github.com/js-arias/micdiff/fitparam"
	"github.com/js-arias/micdiff/inference"
)

// Counts reads a count table file
// as defined in a project.
func (p *Project) Counts() (*counts.Matrix, error) {
	name := p.Path(Counts)
	if name == "" {
		return nil, fmt.Errorf("count table not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := counts.New()
	if err := m.ReadTSV(f); err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return m, nil
}

// Metadata reads a sample metadata file
// as defined in a project.
func (p *Project) Metadata() (*design.Metadata, error) {
	name := p.Path(Samples)
	if name == "" {
		return nil, fmt.Errorf("sample metadata not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	md := design.NewMetadata()
	if err := md.ReadTSV(f); err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return md, nil
}

// FitParam reads a sampling parameters file
// as defined in a project.
// If the file is not defined,
// it returns the default parameters.
func (p *Project) FitParam() (*fitparam.FP, error) {
	name := p.Path(FitParam)
	if name == "" {
		return fitparam.New(""), nil
	}

	return fitparam.Read(name)
}

// Inference reads an inference data file
// as defined in a project.
func (p *Project) Inference() (*inference.Data, error) {
	name := p.Path(Inference)
	if name == "" {
		return nil, fmt.Errorf("inference data not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := inference.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return d, nil
}
