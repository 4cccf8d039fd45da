// Package all registers every built-in block. Import it for side effects
// from binaries that instantiate blocks by name.
package all

import (
	_ "github.com/k-sap/udgo/internal/blocks/udfix"
	_ "github.com/k-sap/udgo/internal/blocks/util"
)
