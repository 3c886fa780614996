package pace

import (
	"math/rand/v2"
	"time"
)

const (
	ScanConcurrency = 8
)

// PersistRetrySleep returns the pause before retrying a failed snapshot
// write: linear in the attempt number with up to a second of jitter so
// retries do not hammer a struggling disk in lockstep.
func PersistRetrySleep(attempt int) time.Duration {
	millis := (attempt-1)*1000 + rand.N(1000) //nolint:gosec
	return time.Duration(millis) * time.Millisecond
}
