package ledger

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Migrations holds the goose migrations for the delivery_ledger table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

// PgxQuerier is the subset of *pgxpool.Pool used by PostgresLedger.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const entryColumns = `event_id, recipient_id, status, channels, created_at, sent_at, read_at`

// PostgresLedger stores entries in the delivery_ledger table. Each write is a
// single statement, so concurrent writers for the same pair are serialized by
// the row lock.
type PostgresLedger struct {
	db  PgxQuerier
	now func() time.Time
}

// PostgresOption configures a PostgresLedger.
type PostgresOption func(*PostgresLedger)

// WithPostgresClock overrides the time source.
func WithPostgresClock(now func() time.Time) PostgresOption {
	return func(l *PostgresLedger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewPostgresLedger creates a ledger backed by db.
func NewPostgresLedger(db PgxQuerier, opts ...PostgresOption) *PostgresLedger {
	l := &PostgresLedger{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *PostgresLedger) Ensure(ctx context.Context, eventID, recipientID string) (Entry, error) {
	if err := validateKey(eventID, recipientID); err != nil {
		return Entry{}, err
	}

	_, err := l.db.Exec(ctx,
		`INSERT INTO delivery_ledger (event_id, recipient_id, status, channels, created_at)
		 VALUES ($1, $2, 'not_sent', '{}', $3)
		 ON CONFLICT (event_id, recipient_id) DO NOTHING`,
		eventID, recipientID, l.now(),
	)
	if err != nil {
		return Entry{}, errors.Join(ErrStorage, err)
	}
	return l.Get(ctx, eventID, recipientID)
}

func (l *PostgresLedger) RecordSent(ctx context.Context, eventID, recipientID string, ch Channel) (Entry, error) {
	if err := validateKey(eventID, recipientID); err != nil {
		return Entry{}, err
	}
	if !ch.Valid() {
		return Entry{}, ErrInvalidChannel
	}

	row := l.db.QueryRow(ctx,
		`UPDATE delivery_ledger SET
			status   = CASE WHEN status = 'not_sent' THEN 'sent' ELSE status END,
			sent_at  = COALESCE(sent_at, $4),
			channels = CASE WHEN $3::text = ANY(channels) THEN channels ELSE array_append(channels, $3::text) END
		 WHERE event_id = $1 AND recipient_id = $2
		 RETURNING `+entryColumns,
		eventID, recipientID, string(ch), l.now(),
	)
	return scanEntry(row)
}

func (l *PostgresLedger) RecordRead(ctx context.Context, eventID, recipientID string) (Entry, error) {
	if err := validateKey(eventID, recipientID); err != nil {
		return Entry{}, err
	}

	row := l.db.QueryRow(ctx,
		`UPDATE delivery_ledger SET status = 'read', read_at = $3
		 WHERE event_id = $1 AND recipient_id = $2 AND status = 'sent'
		 RETURNING `+entryColumns,
		eventID, recipientID, l.now(),
	)
	entry, err := scanEntry(row)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, ErrEntryNotFound) {
		return Entry{}, err
	}

	// Nothing updated: either the pair is unknown, already read or not sent.
	current, err := l.Get(ctx, eventID, recipientID)
	if err != nil {
		return Entry{}, err
	}
	if current.Status == StatusRead {
		return current, nil
	}
	return current, ErrNotSent
}

func (l *PostgresLedger) Get(ctx context.Context, eventID, recipientID string) (Entry, error) {
	row := l.db.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM delivery_ledger WHERE event_id = $1 AND recipient_id = $2`,
		eventID, recipientID,
	)
	return scanEntry(row)
}

func (l *PostgresLedger) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	query, args := buildPostgresQuery(filter)

	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return entries, nil
}

// buildPostgresQuery renders the filter into a parameterized SELECT.
func buildPostgresQuery(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.RecipientID != "" {
		where = append(where, "recipient_id = "+arg(f.RecipientID))
	}
	if f.EventID != "" {
		where = append(where, "event_id = "+arg(f.EventID))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		where = append(where, "status = ANY("+arg(statuses)+")")
	}
	if f.Since != nil {
		where = append(where, "created_at >= "+arg(*f.Since))
	}

	var b strings.Builder
	b.WriteString("SELECT " + entryColumns + " FROM delivery_ledger")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, event_id ASC, recipient_id ASC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT " + arg(f.Limit))
	}
	if f.Offset > 0 {
		b.WriteString(" OFFSET " + arg(f.Offset))
	}
	return b.String(), args
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e        Entry
		status   string
		channels []string
	)
	err := row.Scan(&e.EventID, &e.RecipientID, &status, &channels, &e.CreatedAt, &e.SentAt, &e.ReadAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, errors.Join(ErrStorage, err)
	}
	e.Status = Status(status)
	e.Channels = normalizeChannels(channels)
	return e, nil
}
