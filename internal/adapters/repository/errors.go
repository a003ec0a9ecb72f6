package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyPlayed = errors.New("fixture already played")
	ErrCopyClosed    = errors.New("copy already committed or discarded")
	ErrForeignCopy   = errors.New("copy does not belong to this store")
)
