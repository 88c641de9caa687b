// Package postgres implements storage.EventStore for environments without
// DynamoDB (CI, docker-compose local development). Same single-table contract:
// primary key id, one index per query dimension.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // Register postgres driver

	v1 "github.com/fichron-lab/fichron/internal/api/v1"
)

const connectPingTimeout = 5 * time.Second

// Open creates the connection pool and fails fast if the database is unreachable.
// Run migrations on the returned handle before building an Adapter from it.
func Open(dsn string, maxOpenConns, maxIdleConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), connectPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	slog.Info("[Postgres] Connection pool configured",
		"max_open_conns", maxOpenConns,
		"max_idle_conns", maxIdleConns)

	return db, nil
}

// Adapter implements storage.EventStore for PostgreSQL.
// Statements are prepared up front, so the events table must exist.
type Adapter struct {
	db                  *sql.DB
	stmtPutEvent        *sql.Stmt
	stmtByProperty      *sql.Stmt
	stmtByCharacterName *sql.Stmt
}

// NewAdapter prepares the event statements on an open, migrated database handle.
func NewAdapter(db *sql.DB) (*Adapter, error) {
	stmtPut, err := db.Prepare(queryPutEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare putEvent statement: %w", err)
	}

	stmtByProperty, err := db.Prepare(queryEventsByProperty)
	if err != nil {
		stmtPut.Close()
		return nil, fmt.Errorf("failed to prepare eventsByProperty statement: %w", err)
	}

	stmtByCharacter, err := db.Prepare(queryEventsByCharacter)
	if err != nil {
		stmtPut.Close()
		stmtByProperty.Close()
		return nil, fmt.Errorf("failed to prepare eventsByCharacter statement: %w", err)
	}

	slog.Info("[Postgres] Adapter initialized with prepared statements")

	return &Adapter{
		db:                  db,
		stmtPutEvent:        stmtPut,
		stmtByProperty:      stmtByProperty,
		stmtByCharacterName: stmtByCharacter,
	}, nil
}

// PutEvent persists one event row.
func (a *Adapter) PutEvent(ctx context.Context, event *v1.Event) error {
	_, err := a.stmtPutEvent.ExecContext(ctx,
		event.ID,
		event.FictionName,
		event.PropertyImdbID,
		event.CharacterName,
		event.EventDateAndTime,
		event.EventType,
		event.Created,
		event.Modified,
	)
	if err != nil {
		return fmt.Errorf("failed to save event %q: %w", event.ID, err)
	}

	slog.Debug("[Postgres] Saved event", "event_id", event.ID, "property_imdb_id", event.PropertyImdbID)
	return nil
}

// QueryByPropertyID fetches all events for a canonical property IMDb ID.
func (a *Adapter) QueryByPropertyID(ctx context.Context, imdbID string) ([]*v1.Event, error) {
	return a.queryEvents(ctx, a.stmtByProperty, imdbID)
}

// QueryByCharacterName fetches all events for a character name across fictions.
func (a *Adapter) QueryByCharacterName(ctx context.Context, characterName string) ([]*v1.Event, error) {
	return a.queryEvents(ctx, a.stmtByCharacterName, characterName)
}

func (a *Adapter) queryEvents(ctx context.Context, stmt *sql.Stmt, key string) ([]*v1.Event, error) {
	rows, err := stmt.QueryContext(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*v1.Event
	for rows.Next() {
		event, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEventRow scans a database row into an Event.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanEventRow(row scanner) (*v1.Event, error) {
	var evt v1.Event
	err := row.Scan(
		&evt.ID,
		&evt.FictionName,
		&evt.PropertyImdbID,
		&evt.CharacterName,
		&evt.EventDateAndTime,
		&evt.EventType,
		&evt.Created,
		&evt.Modified,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan event row: %w", err)
	}
	return &evt, nil
}

// Ping reports database connectivity for readiness checks.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Close releases prepared statements and the pool.
func (a *Adapter) Close() error {
	a.stmtPutEvent.Close()
	a.stmtByProperty.Close()
	a.stmtByCharacterName.Close()
	return a.db.Close()
}
