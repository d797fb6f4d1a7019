package service

import "errors"

// ErrNotFound marks a lookup that matched nothing
var ErrNotFound = errors.New("not found")

// ErrInvalidInput marks a request rejected by validation
var ErrInvalidInput = errors.New("invalid input")
