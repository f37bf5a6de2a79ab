package storage

import "errors"

var (
	// ErrNoSnapshot indicates no snapshot has been saved yet.
	ErrNoSnapshot = errors.New("storage: no snapshot stored")

	// ErrCorruptSnapshot indicates the stored snapshot failed to decode or
	// to authenticate against the seal key.
	ErrCorruptSnapshot = errors.New("storage: corrupt or unreadable snapshot")
)
