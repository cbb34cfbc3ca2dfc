package extract

import (
	"errors"

	"github.com/rotisserie/eris"
)

// ErrTimeout marks extraction failures caused by the source not responding
// in time. Callers surface these with a distinct message so users know a
// retry may succeed.
var ErrTimeout = eris.New("extraction timed out")

// IsTimeout reports whether err is a timeout extraction failure.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
