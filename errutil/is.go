package errutil

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/xeptore/flaw/v8"
)

// IsAny reports whether err matches any of the targets, returning the
// first match.
func IsAny(err error, target error, targets ...error) (error, bool) {
	if errors.Is(err, target) {
		return target, true
	}
	for _, t := range targets {
		if errors.Is(err, t) {
			return t, true
		}
	}
	return nil, false
}

func IsContext(ctx context.Context) bool {
	err := ctx.Err()
	return nil != err && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// IsFlaw reports whether err carries a *flaw.Flaw anywhere in its chain.
func IsFlaw(err error) bool {
	f := new(flaw.Flaw)
	return errors.As(err, &f)
}

// IsPermanentFS reports whether a filesystem error cannot be cured by
// retrying, e.g. the path is gone or access is denied.
func IsPermanentFS(err error) bool {
	_, ok := IsAny(err, fs.ErrNotExist, fs.ErrPermission, fs.ErrInvalid, os.ErrClosed)
	return ok
}
