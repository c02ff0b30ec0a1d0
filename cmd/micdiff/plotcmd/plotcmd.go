// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package plotcmd is a metapackage for commands
// that draw diagnostic figures of a fitted model.
package plotcmd

import (
	"github.com/js-arias/command"
	"github.com/js-arias/micdiff/cmd/micdiff/plotcmd/estimates"
	"github.com/js-arias/micdiff/cmd/micdiff/plotcmd/mapcmd"
	"github.com/js-arias/micdiff/cmd/micdiff/plotcmd/ppc"
)

var Command = &command.Command{
	Usage: "plot <command> [<argument>...]",
	Short: "commands for diagnostic figures of a fitted model",
}

func init() {
	Command.Add(estimates.Command)
	Command.Add(mapcmd.Command)
	Command.Add(ppc.Command)
}
