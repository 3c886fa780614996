package constant

import (
	_ "embed"
	"fmt"
	"time"
)

const AppName = "tonearm"

var (
	//go:embed version
	Version string
	// Overridden at build time via -ldflags -X.
	compileTime string = "2025-08-25T10:12:44Z"
	CompileTime time.Time
)

func init() {
	t, err := time.Parse(time.RFC3339, compileTime)
	if nil != err {
		panic(fmt.Errorf("could not parse compile time %q. it must be RFC3339, set at build time", compileTime))
	}
	CompileTime = t
}
