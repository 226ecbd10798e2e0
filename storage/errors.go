package storage

import "github.com/pkg/errors"

// ErrNotFound is returned when attempting to get or delete an entry that does
// not exist, or when a cached entry has expired.
var ErrNotFound = errors.New("not found")
