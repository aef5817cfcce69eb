package models

import "errors"

// Store sentinels. Adapters wrap them with %w so callers can errors.Is them.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)
