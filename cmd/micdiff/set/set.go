// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package set implements a command to add dataset files
// to a MicDiff project.
package set

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/micdiff/counts"
	"github.com/js-arias/micdiff/design"
	"github.com/js-arias/micdiff/fitparam"
	"github.com/js-arias/micdiff/inference"
	"github.com/js-arias/micdiff/project"
)

var Command = &command.Command{
	Usage: "set --type <file-type> <project-file> <dataset-file>",
	Short: "add a dataset file to a project",
	Long: `
Command set adds the path of a dataset file to a MicDiff project.

The first argument of the command is the name of the project file. If no
project exists, a new project will be created.

The second argument is the valid path of a dataset file. The file will be
read and validated before being added to the project. If there is a file of
the same type already defined in the project, its path will be replaced by
the path of the added file.

The type of the added file must be explicitly defined using the flag --type
with one of the following values:

	counts	for a count table
	samples	for sample metadata
	fitparam	for sampling parameters
	inference	for inference data of a fitted model
	`,
	SetFlags: setFlags,
	Run:      run,
}

var typeFlag string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&typeFlag, "type", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if len(args) < 2 {
		return c.UsageError("expecting dataset file")
	}
	if typeFlag == "" {
		return c.UsageError("flag --type undefined")
	}

	pFile := args[0]
	p, err := openProject(pFile)
	if err != nil {
		return err
	}

	path := args[1]
	typeFlag = strings.ToLower(typeFlag)
	switch d := project.Dataset(typeFlag); d {
	case project.Counts:
		if err := validCounts(path); err != nil {
			return err
		}
		p.Add(d, path)
	case project.Samples:
		if err := validMetadata(path); err != nil {
			return err
		}
		p.Add(d, path)
	case project.FitParam:
		if _, err := fitparam.Read(path); err != nil {
			return err
		}
		p.Add(d, path)
	case project.Inference:
		if err := validInference(path); err != nil {
			return err
		}
		p.Add(d, path)
	default:
		msg := fmt.Sprintf("flag --type: unknown value %q", typeFlag)
		return c.UsageError(msg)
	}

	p.SetName(pFile)
	if err := p.Write(); err != nil {
		return err
	}

	return nil
}

func openProject(name string) (*project.Project, error) {
	p, err := project.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		return project.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open project %q: %v", name, err)
	}
	return p, nil
}

func validCounts(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	m := counts.New()
	if err := m.ReadTSV(f); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}

func validMetadata(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	md := design.NewMetadata()
	if err := md.ReadTSV(f); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}

func validInference(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := inference.ReadTSV(f); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
