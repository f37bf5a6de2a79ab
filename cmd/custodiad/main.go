// Command custodiad hosts a single custodial asset-distribution system
// behind an HTTP API: it persists state snapshots and pool balances under
// the data directory, logs every notification, optionally mirrors them to a
// Postgres audit table, and runs a watcher that triggers distribution once
// the owner-inactivity timeout elapses.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/custodiaorg/libcustodia-go/config"
	"github.com/custodiaorg/libcustodia-go/custody"
	"github.com/custodiaorg/libcustodia-go/events"
	"github.com/custodiaorg/libcustodia-go/httpapi"
	"github.com/custodiaorg/libcustodia-go/ledger"
	"github.com/custodiaorg/libcustodia-go/storage"
)

// watcherIdentity is the caller the timeout watcher triggers as. It holds no
// role: the trigger only succeeds because the timeout elapsed, the same as
// any other caller.
const watcherIdentity = custody.Identity("custodiad/watcher")

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("could not load configuration")
	}
	if err := config.ValidateConfig(cfg); err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := newLogger(cfg)
	log.WithFields(logrus.Fields{
		"data_dir":    cfg.DataDir,
		"listen_addr": cfg.ListenAddr,
		"timeout":     cfg.Timeout,
	}).Info("custodiad starting")

	pool, err := ledger.OpenBoltLedger(filepath.Join(cfg.DataDir, "ledger.db"))
	if err != nil {
		log.WithError(err).Fatal("could not open ledger database")
	}
	defer pool.Close()

	store, err := storage.OpenSnapshotStore(filepath.Join(cfg.DataDir, "state.db"), cfg.SnapshotPassphrase)
	if err != nil {
		log.WithError(err).Fatal("could not open snapshot store")
	}
	defer store.Close()

	sink, closeSink, err := buildSink(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("could not set up event sinks")
	}
	defer closeSink()

	sys, err := buildSystem(cfg, pool, sink, store, log)
	if err != nil {
		log.WithError(err).Fatal("could not construct custody system")
	}

	watcher := startWatcher(cfg, sys, store, log)
	defer watcher.Stop()

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpapi.NewServer(sys, pool, store, log).Router(),
	}
	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("http api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("http shutdown failed")
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Environment == "production" || cfg.Environment == "staging" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// buildSink assembles a log sink plus, when configured, the Postgres audit
// sink. The returned close func releases the audit connection.
func buildSink(cfg config.Config, log *logrus.Logger) (custody.Sink, func(), error) {
	sinks := events.MultiSink{events.NewLogSink(log)}
	closeSink := func() {}
	if cfg.DatabaseURL != "" {
		db, err := events.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pg := events.NewPostgresSink(db, log)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		sinks = append(sinks, pg)
		closeSink = func() { _ = db.Close() }
		log.Info("postgres audit sink enabled")
	}
	return sinks, closeSink, nil
}

// buildSystem restores the persisted state when present, otherwise
// constructs a fresh system from the configuration. A restored snapshot
// wins over the configured identities: the state machine's identities are
// immutable for the life of a deployment.
func buildSystem(cfg config.Config, gw custody.Gateway, sink custody.Sink, store *storage.SnapshotStore, log *logrus.Logger) (*custody.System, error) {
	params := custody.Params{
		Owner:        custody.Identity(cfg.Owner),
		TrustedParty: custody.Identity(cfg.TrustedParty),
		Timeout:      cfg.Timeout,
		Gateway:      gw,
		Events:       sink,
	}

	snap, err := store.Load()
	switch {
	case err == nil:
		if string(snap.Owner) != cfg.Owner || string(snap.TrustedParty) != cfg.TrustedParty {
			log.WithFields(logrus.Fields{
				"stored_owner": string(snap.Owner),
			}).Warn("configured identities differ from stored snapshot; snapshot wins")
		}
		log.WithField("phase", phaseOf(snap)).Info("restored state snapshot")
		return custody.Restore(snap, params)
	case errors.Is(err, storage.ErrNoSnapshot):
		log.Info("no stored snapshot, starting fresh")
		sys, err := custody.New(params)
		if err != nil {
			return nil, err
		}
		if err := store.Save(sys.Snapshot()); err != nil {
			return nil, err
		}
		return sys, nil
	default:
		return nil, err
	}
}

func phaseOf(snap custody.Snapshot) string {
	if snap.Triggered {
		return string(custody.PhaseDistributing)
	}
	return string(custody.PhaseOpen)
}

// startWatcher runs the timeout watcher on the configured cron schedule.
// Once the owner-inactivity timeout elapses it triggers distribution and
// persists the transition.
func startWatcher(cfg config.Config, sys *custody.System, store *storage.SnapshotStore, log *logrus.Logger) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc(cfg.WatchCronSpec, func() {
		if sys.State() != custody.PhaseOpen || !sys.TimeoutElapsed(time.Now()) {
			return
		}
		err := sys.Trigger(watcherIdentity)
		switch {
		case err == nil:
			log.Warn("owner inactivity timeout elapsed, distribution triggered")
			if err := store.Save(sys.Snapshot()); err != nil {
				log.WithError(err).Error("failed to persist triggered state")
			}
		case errors.Is(err, custody.ErrNoBeneficiaries):
			// Nothing to distribute to yet; keep watching.
			log.Debug("timeout elapsed but registry is empty")
		case errors.Is(err, custody.ErrAlreadyTriggered):
			// Raced with an explicit trigger; nothing to do.
		default:
			log.WithError(err).Error("watcher trigger failed")
		}
	})
	if err != nil {
		log.WithError(err).Fatal("invalid watcher cron schedule")
	}
	c.Start()
	log.WithField("schedule", cfg.WatchCronSpec).Info("timeout watcher started")
	return c
}
