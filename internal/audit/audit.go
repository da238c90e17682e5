// Package audit records quality-control events for cruise datasets in
// PostgreSQL. Every automated check and every submission decision leaves an
// event here, so the full QC history of an expocode can be reconstructed.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckerUsername identifies events produced by the automated data checker
// rather than a human reviewer.
const CheckerUsername = "automated.data.checker"

// CheckerRealname is the display name recorded for automated events.
const CheckerRealname = "automated data checker"

// QCEvent is a single quality-control event for a dataset.
type QCEvent struct {
	ID           string    `json:"id"`
	Expocode     string    `json:"expocode"`
	Flag         string    `json:"flag"`
	QCStatus     string    `json:"qcStatus"`
	FlagDate     time.Time `json:"flagDate"`
	Version      string    `json:"version,omitempty"`
	Username     string    `json:"username"`
	Realname     string    `json:"realname,omitempty"`
	Comment      string    `json:"comment,omitempty"`
	NumErrorRows int       `json:"numErrorRows"`
	NumWarnRows  int       `json:"numWarnRows"`
	RecordedAt   time.Time `json:"recordedAt"`
}

// AppendParams contains the fields for a new QC event. ID and RecordedAt
// are assigned by the store.
type AppendParams struct {
	Expocode     string
	Flag         string
	QCStatus     string
	FlagDate     time.Time
	Version      string
	Username     string
	Realname     string
	Comment      string
	NumErrorRows int
	NumWarnRows  int
}

// Store persists QC events in the qc_events table.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a store over the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS qc_events (
	id UUID PRIMARY KEY,
	expocode TEXT NOT NULL,
	flag TEXT NOT NULL,
	qc_status TEXT NOT NULL,
	flag_date TIMESTAMPTZ NOT NULL,
	version TEXT,
	username TEXT NOT NULL,
	realname TEXT,
	comment TEXT,
	num_error_rows INTEGER NOT NULL DEFAULT 0,
	num_warn_rows INTEGER NOT NULL DEFAULT 0,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS qc_events_expocode_idx ON qc_events (expocode, recorded_at)`

// EnsureSchema creates the qc_events table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, createTableSQL)
	return err
}

const insertEventSQL = `
INSERT INTO qc_events
	(id, expocode, flag, qc_status, flag_date, version, username, realname, comment,
	 num_error_rows, num_warn_rows, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// Append records a new QC event and returns it with its assigned ID.
func (s *Store) Append(ctx context.Context, params AppendParams) (*QCEvent, error) {
	event := &QCEvent{
		ID:           uuid.New().String(),
		Expocode:     params.Expocode,
		Flag:         params.Flag,
		QCStatus:     params.QCStatus,
		FlagDate:     params.FlagDate,
		Version:      params.Version,
		Username:     params.Username,
		Realname:     params.Realname,
		Comment:      params.Comment,
		NumErrorRows: params.NumErrorRows,
		NumWarnRows:  params.NumWarnRows,
		RecordedAt:   time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx, insertEventSQL,
		toPgUUID(event.ID),
		event.Expocode,
		event.Flag,
		event.QCStatus,
		pgtype.Timestamptz{Time: event.FlagDate, Valid: true},
		toPgText(event.Version),
		event.Username,
		toPgText(event.Realname),
		toPgText(event.Comment),
		int32(event.NumErrorRows),
		int32(event.NumWarnRows),
		pgtype.Timestamptz{Time: event.RecordedAt, Valid: true},
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

const listByExpocodeSQL = `
SELECT id, expocode, flag, qc_status, flag_date, version, username, realname, comment,
	num_error_rows, num_warn_rows, recorded_at
FROM qc_events
WHERE expocode = $1
ORDER BY recorded_at ASC, id ASC
LIMIT $2 OFFSET $3`

// DefaultListLimit bounds ListByExpocode when no limit is given.
const DefaultListLimit = 200

// ListByExpocode returns the QC events for a dataset, oldest first.
func (s *Store) ListByExpocode(ctx context.Context, expocode string, limit, offset int) ([]QCEvent, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.pool.Query(ctx, listByExpocodeSQL, expocode, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]QCEvent, 0, limit)
	for rows.Next() {
		var (
			id                   pgtype.UUID
			version              pgtype.Text
			realname, comment    pgtype.Text
			flagDate, recordedAt pgtype.Timestamptz
			expo, flag, status   string
			username             string
			numErrors, numWarns  int32
		)
		if err := rows.Scan(&id, &expo, &flag, &status, &flagDate, &version,
			&username, &realname, &comment, &numErrors, &numWarns, &recordedAt); err != nil {
			return nil, err
		}
		events = append(events, QCEvent{
			ID:           uuidToString(id),
			Expocode:     expo,
			Flag:         flag,
			QCStatus:     status,
			FlagDate:     flagDate.Time,
			Version:      version.String,
			Username:     username,
			Realname:     realname.String,
			Comment:      comment.String,
			NumErrorRows: int(numErrors),
			NumWarnRows:  int(numWarns),
			RecordedAt:   recordedAt.Time,
		})
	}
	return events, rows.Err()
}

const countByExpocodeSQL = `SELECT count(*) FROM qc_events WHERE expocode = $1`

// Count returns the number of QC events recorded for a dataset.
func (s *Store) Count(ctx context.Context, expocode string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, countByExpocodeSQL, expocode).Scan(&n)
	return n, err
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
