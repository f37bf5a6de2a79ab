package events

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // driver registration
	"github.com/sirupsen/logrus"

	"github.com/custodiaorg/libcustodia-go/custody"
)

// eventsSchema is the audit table. Append-only: rows are never updated or
// deleted by this package.
const eventsSchema = `
CREATE TABLE IF NOT EXISTS custody_events (
    id          UUID PRIMARY KEY,
    event_type  TEXT NOT NULL,
    caller      TEXT NOT NULL,
    recipient   TEXT NOT NULL DEFAULT '',
    share_bps   BIGINT NOT NULL DEFAULT 0,
    asset       TEXT NOT NULL DEFAULT '',
    amount      BIGINT NOT NULL DEFAULT 0,
    occurred_at TIMESTAMPTZ NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// OpenPostgres connects to the audit database and verifies the connection.
func OpenPostgres(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open postgres: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: ping postgres: %w", err)
	}
	return db, nil
}

// PostgresSink appends events to the custody_events audit table. Insert
// failures are logged, never propagated: the audit trail is best effort by
// design, the state machine must not stall on it.
type PostgresSink struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresSink(db *sql.DB, log *logrus.Logger) *PostgresSink {
	return &PostgresSink{db: db, log: log}
}

// EnsureSchema creates the audit table if it does not exist.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, eventsSchema); err != nil {
		return fmt.Errorf("events: ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresSink) Notify(ev custody.Event) {
	const query = `INSERT INTO custody_events
        (id, event_type, caller, recipient, share_bps, asset, amount, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.Exec(query,
		uuid.NewString(),
		string(ev.Type),
		string(ev.Caller),
		string(ev.Recipient),
		int64(ev.ShareBps),
		string(ev.Asset),
		int64(ev.Amount),
		ev.At,
	)
	if err != nil {
		s.log.WithError(err).WithField("event", string(ev.Type)).
			Error("failed to record custody event")
	}
}
