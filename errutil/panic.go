package errutil

import (
	"fmt"
)

// UnknownError builds the panic message for errors reaching a branch the
// caller considers unreachable.
func UnknownError(err error) string {
	return fmt.Sprintf("unexpected error of type %T: %v", err, err)
}
