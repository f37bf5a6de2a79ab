// Copyright (c) 2026 The Custodia developers
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrInvalidListenAddr indicates the listen address is malformed.
	ErrInvalidListenAddr = errors.New("config: invalid listen address")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyOwner indicates the owner identity is not set.
	ErrEmptyOwner = errors.New("config: owner identity must not be empty")

	// ErrEmptyTrustedParty indicates the trusted-party identity is not set.
	ErrEmptyTrustedParty = errors.New("config: trusted-party identity must not be empty")

	// ErrInvalidIdentityFormat indicates the identity format is not recognized.
	ErrInvalidIdentityFormat = errors.New("config: invalid identity format (must be \"opaque\" or \"bsv\")")

	// ErrInvalidIdentity indicates an identity does not parse in the
	// configured format.
	ErrInvalidIdentity = errors.New("config: invalid identity")

	// ErrInvalidTimeout indicates the timeout is not a positive duration.
	ErrInvalidTimeout = errors.New("config: invalid timeout (must be a positive duration)")
)
