package domain

import "errors"

// ErrValidation is returned when input fails a local precondition (e.g. a
// missing required field or path segment) before any network call is made.
var ErrValidation = errors.New("validation error")

// ErrNotFound is returned when the remote store reports that the requested
// resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized is returned when a call is made without a usable credential
// or the store rejects the one presented. Callers should prompt for login.
var ErrUnauthorized = errors.New("unauthorized")
