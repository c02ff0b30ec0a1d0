// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mapcmd implements a command to draw
// a heat map of the posterior mean of a model parameter.
package mapcmd

import (
	"fmt"
	"image/png"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/micdiff/postmap"
	"github.com/js-arias/micdiff/project"
)

var Command = &command.Command{
	Usage: `map [--param <parameter>] [--cell <value>] [--gray]
	[-o|--output <file>] <project-file>`,
	Short: "draw a heat map of a model parameter",
	Long: `
Command map reads the inference data of a MicDiff project and draws the
posterior mean of a model parameter as a heat map image, with a row per
feature and a column per covariate. Values are scaled symmetrically around
zero, so the middle of the color gradient is always a zero effect.

The argument of the command is the name of the project file.

By default, the parameter "beta" will be drawn. Use the flag --param to
draw a different parameter.

By default, each cell of the map is 16 pixels wide. Use the flag --cell to
define a different cell size.

By default, the map uses the rainbow color scheme of Paul Tol. If the flag
--gray is given, a gray scale will be used.

The image is saved as a PNG file named 'map.png'; use the flag --output, or
-o, to define a different file name. As the image has no text, the order of
the rows and the columns is printed into the standard output.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var grayFlag bool
var cellFlag int
var paramFlag string
var output string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&grayFlag, "gray", false, "")
	c.Flags().IntVar(&cellFlag, "cell", 16, "")
	c.Flags().StringVar(&paramFlag, "param", "beta", "")
	c.Flags().StringVar(&output, "output", "map.png", "")
	c.Flags().StringVar(&output, "o", "map.png", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	d, err := p.Inference()
	if err != nil {
		return err
	}

	ms, rows, cols, err := postmap.Mean(d, paramFlag)
	if err != nil {
		return err
	}

	img := &postmap.Image{
		Cell:  cellFlag,
		Means: ms,
	}
	if grayFlag {
		img.Gradient = postmap.LightGrayScale{}
	}
	img.Format()

	if err := writeImage(output, img); err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout(), "image: %s\n", output)
	fmt.Fprintf(c.Stdout(), "columns (left to right):\n")
	for _, v := range cols {
		fmt.Fprintf(c.Stdout(), "\t%s\n", v)
	}
	fmt.Fprintf(c.Stdout(), "rows (top to bottom):\n")
	for _, v := range rows {
		fmt.Fprintf(c.Stdout(), "\t%s\n", v)
	}
	return nil
}

func writeImage(name string, m *postmap.Image) (err error) {
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

	if err := png.Encode(f, m); err != nil {
		return fmt.Errorf("when encoding file %q: %v", name, err)
	}
	return nil
}
