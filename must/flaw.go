package must

import (
	"errors"
	"fmt"

	"github.com/xeptore/flaw/v8"
)

// BeFlaw returns the *flaw.Flaw wrapped in err, panicking when err does
// not carry one.
func BeFlaw(err error) *flaw.Flaw {
	f := new(flaw.Flaw)
	if !errors.As(err, &f) {
		panic(fmt.Sprintf("expected a *flaw.Flaw in the error chain, got %T: %v", err, err))
	}
	return f
}
