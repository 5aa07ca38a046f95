package procedures

import "errors"

// ErrNotFound indicates a procedure was not found.
var ErrNotFound = errors.New("not found")
