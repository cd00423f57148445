// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates an infrastructure failure. State is left unchanged
// and the caller may retry, though retrying money movement blindly is unsafe.
var ErrInternal = errors.New("internal")
