// Copyright (c) 2026 The Custodia developers
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net"

	"github.com/bsv-blockchain/go-sdk/script"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if err := validateAddr(cfg.ListenAddr); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidListenAddr, err)
	}

	if !validLogLevels[cfg.LogLevel] {
		return ErrInvalidLogLevel
	}

	if cfg.Owner == "" {
		return ErrEmptyOwner
	}
	if cfg.TrustedParty == "" {
		return ErrEmptyTrustedParty
	}

	switch cfg.IdentityFormat {
	case "opaque":
		// Anything non-empty goes; the hosting environment owns the format.
	case "bsv":
		for _, id := range []string{cfg.Owner, cfg.TrustedParty} {
			if _, err := script.NewAddressFromString(id); err != nil {
				return fmt.Errorf("%w: %q: %w", ErrInvalidIdentity, id, err)
			}
		}
	default:
		return ErrInvalidIdentityFormat
	}

	if cfg.Timeout < 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// validateAddr checks that addr is a valid host:port address.
func validateAddr(addr string) error {
	_, _, err := net.SplitHostPort(addr)
	return err
}
