package storage

import "errors"

// ErrNotFound is returned by read paths when the requested key is absent.
var ErrNotFound = errors.New("storage: not found")

// ErrNoMoreElements is returned when a queue has no unreserved entries left.
var ErrNoMoreElements = errors.New("storage: no more elements")
