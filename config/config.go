// Copyright (c) 2026 The Custodia developers
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the custodiad daemon configuration.
type Config struct {
	DataDir     string // bolt databases live under here
	ListenAddr  string // host:port for the HTTP API
	LogLevel    string // debug, info, warn, error
	Environment string // development, staging, production

	Owner          string        // owner identity
	TrustedParty   string        // trusted-party identity
	Timeout        time.Duration // owner-inactivity timeout
	IdentityFormat string        // "opaque" or "bsv" (P2PKH addresses)

	DatabaseURL        string // optional Postgres audit sink
	SnapshotPassphrase string // optional at-rest sealing of state snapshots
	WatchCronSpec      string // schedule of the timeout watcher
}

// Load reads configuration from environment variables and a .env file when
// present. Existing environment variables win over the .env file. Load does
// not validate; call ValidateConfig on the result.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DataDir:            envOr("CUSTODIA_DATA_DIR", defaultDataDir()),
		ListenAddr:         envOr("CUSTODIA_LISTEN_ADDR", "127.0.0.1:8480"),
		LogLevel:           strings.ToLower(envOr("CUSTODIA_LOG_LEVEL", "info")),
		Environment:        strings.ToLower(envOr("CUSTODIA_ENVIRONMENT", "development")),
		Owner:              os.Getenv("CUSTODIA_OWNER"),
		TrustedParty:       os.Getenv("CUSTODIA_TRUSTED_PARTY"),
		IdentityFormat:     strings.ToLower(envOr("CUSTODIA_IDENTITY_FORMAT", "opaque")),
		DatabaseURL:        os.Getenv("CUSTODIA_DATABASE_URL"),
		SnapshotPassphrase: os.Getenv("CUSTODIA_SNAPSHOT_PASSPHRASE"),
		WatchCronSpec:      envOr("CUSTODIA_WATCH_CRON", "@every 1m"),
	}

	if raw := os.Getenv("CUSTODIA_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, ErrInvalidTimeout
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".custodia"
	}
	return home + "/.custodia"
}
