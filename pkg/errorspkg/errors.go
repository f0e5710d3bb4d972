// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates an internal persistence or infrastructure error.
// The underlying cause is logged and never surfaced to the caller.
var ErrInternal = errors.New("internal")
