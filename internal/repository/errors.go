package repository

import "errors"

// ErrDuplicateKey is returned when an insert collides with a unique index.
var ErrDuplicateKey = errors.New("duplicate key")
