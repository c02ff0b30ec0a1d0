// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package fit is a metapackage for commands
// that fit differential abundance models.
package fit

import (
	"github.com/js-arias/command"
	"github.com/js-arias/micdiff/cmd/micdiff/fit/mult"
	"github.com/js-arias/micdiff/cmd/micdiff/fit/nb"
)

var Command = &command.Command{
	Usage: "fit <command> [<argument>...]",
	Short: "commands to fit differential abundance models",
}

func init() {
	Command.Add(mult.Command)
	Command.Add(nb.Command)
}
