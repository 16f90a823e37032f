// Package fixture holds configuration documents captured from real devices, one
// per firmware generation. Tests across the module decode them.
package fixture

import _ "embed"

//go:embed physicalconfig1.07.json
var V107 []byte

//go:embed physicalconfig1.12.1.json
var V112 []byte
