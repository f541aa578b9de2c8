package store

import "errors"

// Sentinel errors.
var (
	ErrUnknownKey   = errors.New("unknown collection key")
	ErrDuplicateKey = errors.New("collection key already registered")
	ErrTypeMismatch = errors.New("collection item type mismatch")
	ErrReadOnly     = errors.New("backend does not support mutations")
)
