// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package model

import _ "embed"

// Stan source of the model programs.
var (
	//go:embed templates/negative_binomial.stan
	negBinSrc []byte

	//go:embed templates/negative_binomial_single.stan
	negBinSingleSrc []byte

	//go:embed templates/multinomial.stan
	multinomialSrc []byte
)
