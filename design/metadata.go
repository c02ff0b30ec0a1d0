// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package design

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Metadata is a collection of per-sample variables,
// such as the host,
// the body site,
// or the sampling time
// of each sample of a study.
type Metadata struct {
	cols    []string
	colSet  map[string]bool
	samples []string
	vals    map[string]map[string]string
}

// NewMetadata creates a new empty metadata collection.
func NewMetadata() *Metadata {
	return &Metadata{
		colSet: make(map[string]bool),
		vals:   make(map[string]map[string]string),
	}
}

// Add adds the value of a variable for a sample,
// creating the sample and the variable
// if they are not already in the collection.
// Adding a sample-variable pair a second time
// replaces the stored value.
func (md *Metadata) Add(sample, column, value string) {
	sample = strings.TrimSpace(sample)
	if sample == "" {
		return
	}
	column = strings.TrimSpace(column)
	if column == "" {
		return
	}

	if !md.colSet[column] {
		md.colSet[column] = true
		md.cols = append(md.cols, column)
	}
	sv, ok := md.vals[sample]
	if !ok {
		sv = make(map[string]string)
		md.vals[sample] = sv
		md.samples = append(md.samples, sample)
	}
	sv[column] = strings.TrimSpace(value)
}

// Columns returns the variables of the collection,
// in the order in which they were added.
func (md *Metadata) Columns() []string {
	return append([]string{}, md.cols...)
}

// Samples returns the samples of the collection,
// in the order in which they were added.
func (md *Metadata) Samples() []string {
	return append([]string{}, md.samples...)
}

// Value returns the value of a variable for a sample.
// It returns an empty string
// if the value is not defined.
func (md *Metadata) Value(sample, column string) string {
	sv, ok := md.vals[strings.TrimSpace(sample)]
	if !ok {
		return ""
	}
	return sv[strings.TrimSpace(column)]
}

// ReadTSV reads a metadata collection from a TSV file.
//
// The TSV file must contain the field "sample"
// with the name of each sample;
// any other field is read as a variable,
// keeping the case of its header.
// Here is an example file:
//
//	sample	diet	age
//	sample1	carnivore	5
//	sample2	herbivore	12
//	sample3	herbivore	7
func (md *Metadata) ReadTSV(r io.Reader) error {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return fmt.Errorf("while reading header: %v", err)
	}
	sc := -1
	for i, h := range head {
		if strings.ToLower(strings.TrimSpace(h)) == "sample" {
			sc = i
			break
		}
	}
	if sc < 0 {
		return fmt.Errorf("expecting field %q", "sample")
	}

	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}

		sample := strings.TrimSpace(row[sc])
		if sample == "" {
			return fmt.Errorf("on row %d: field %q: empty sample name", ln, "sample")
		}
		for i, h := range head {
			if i == sc {
				continue
			}
			md.Add(sample, h, row[i])
		}
	}
	return nil
}

// TSV writes a metadata collection to a TSV file.
func (md *Metadata) TSV(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# sample metadata\n"); err != nil {
		return fmt.Errorf("unable to write data: %v", err)
	}
	if _, err := fmt.Fprintf(w, "# data save on: %s\n", time.Now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("unable to write data: %v", err)
	}

	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := append([]string{"sample"}, md.cols...)
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, s := range md.samples {
		row := make([]string, 0, len(md.cols)+1)
		row = append(row, s)
		for _, c := range md.cols {
			row = append(row, md.vals[s][c])
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("when writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
