// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package stan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Data is the input data of a model run,
// a collection of values
// keyed by the names
// declared in the data block
// of the model program.
// Valid values are numbers,
// slices of numbers,
// and nested slices of numbers.
type Data map[string]any

// WriteData writes model data
// as a CmdStan JSON data file.
func WriteData(w io.Writer, d Data) error {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("while writing model data: %v", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("while writing model data: %v", err)
	}
	return nil
}

// WriteDataFile writes model data
// as a CmdStan JSON data file
// with the indicated name.
func WriteDataFile(name string, d Data) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := WriteData(f, d); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}
