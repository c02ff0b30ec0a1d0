// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// MicDiff is a tool for differential abundance analysis
// of microbiome count data.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/micdiff/cmd/micdiff/fit"
	"github.com/js-arias/micdiff/cmd/micdiff/param"
	"github.com/js-arias/micdiff/cmd/micdiff/plotcmd"
	"github.com/js-arias/micdiff/cmd/micdiff/prj"
	"github.com/js-arias/micdiff/cmd/micdiff/set"
	"github.com/js-arias/micdiff/cmd/micdiff/sim"
	"github.com/js-arias/micdiff/cmd/micdiff/summary"
)

var app = &command.Command{
	Usage: "micdiff <command> [<argument>...]",
	Short: "a tool for microbiome differential abundance analysis",
}

func init() {
	app.Add(fit.Command)
	app.Add(param.Command)
	app.Add(plotcmd.Command)
	app.Add(prj.Command)
	app.Add(set.Command)
	app.Add(sim.Command)
	app.Add(summary.Command)
}

func main() {
	app.Main()
}
