package presence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
)

// PostgresEventStore persists presence events in PostgreSQL.
type PostgresEventStore struct {
	db *sql.DB
}

func NewPostgresEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) CreateEvent(ctx context.Context, event Event) error {
	raw := make([]uuid.UUID, len(event.AdultIDs))
	for i, adultID := range event.AdultIDs {
		raw[i] = uuid.UUID(adultID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO presence_events (id, adult_ids, zone, reported_seconds, entered_at, expected_exit_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(event.ID), pq.Array(raw), event.Zone, event.ReportedSeconds,
		event.EnteredAt, event.ExpectedExitAt)
	if err != nil {
		return fmt.Errorf("create presence event: %w", err)
	}
	return nil
}

func (s *PostgresEventStore) ListEventsByAdult(ctx context.Context, adultID id.AdultID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, adult_ids, zone, reported_seconds, entered_at, expected_exit_at
		FROM presence_events
		WHERE $1 = ANY(adult_ids)
		ORDER BY entered_at DESC
	`, uuid.UUID(adultID))
	if err != nil {
		return nil, fmt.Errorf("list presence events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			event Event
			rawID uuid.UUID
			raw   []uuid.UUID
		)
		if err := rows.Scan(&rawID, pq.Array(&raw), &event.Zone,
			&event.ReportedSeconds, &event.EnteredAt, &event.ExpectedExitAt); err != nil {
			return nil, fmt.Errorf("scan presence event: %w", err)
		}
		event.ID = id.RecordID(rawID)
		event.AdultIDs = make([]id.AdultID, len(raw))
		for i, u := range raw {
			event.AdultIDs[i] = id.AdultID(u)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// PostgresExcursionStore persists excursions in PostgreSQL.
type PostgresExcursionStore struct {
	db *sql.DB
}

func NewPostgresExcursionStore(db *sql.DB) *PostgresExcursionStore {
	return &PostgresExcursionStore{db: db}
}

func (s *PostgresExcursionStore) CreateExcursion(ctx context.Context, excursion Excursion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO excursions (id, adult_id, longitude, latitude, departed_at, returned_at, elapsed_outside)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(excursion.ID), uuid.UUID(excursion.AdultID), excursion.Longitude,
		excursion.Latitude, excursion.DepartedAt, excursion.ReturnedAt, excursion.ElapsedOutside)
	if err != nil {
		return fmt.Errorf("create excursion: %w", err)
	}
	return nil
}

func (s *PostgresExcursionStore) FindExcursionByID(ctx context.Context, excursionID id.RecordID) (Excursion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, adult_id, longitude, latitude, departed_at, returned_at, elapsed_outside
		FROM excursions WHERE id = $1
	`, uuid.UUID(excursionID))
	excursion, err := scanExcursion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Excursion{}, sentinel.ErrNotFound
		}
		return Excursion{}, fmt.Errorf("find excursion: %w", err)
	}
	return excursion, nil
}

// CloseExcursion only matches open rows, so a concurrent double-close loses
// the race inside Postgres rather than in application code.
func (s *PostgresExcursionStore) CloseExcursion(ctx context.Context, excursionID id.RecordID, returnedAt time.Time, elapsedSeconds int64) (Excursion, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE excursions
		SET returned_at = $2, elapsed_outside = $3
		WHERE id = $1 AND returned_at IS NULL
		RETURNING id, adult_id, longitude, latitude, departed_at, returned_at, elapsed_outside
	`, uuid.UUID(excursionID), returnedAt, elapsedSeconds)
	excursion, err := scanExcursion(row)
	if err == nil {
		return excursion, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Excursion{}, fmt.Errorf("close excursion: %w", err)
	}

	// No open row matched: distinguish "already closed" from "absent".
	if _, findErr := s.FindExcursionByID(ctx, excursionID); findErr == nil {
		return Excursion{}, sentinel.ErrInvalidState
	}
	return Excursion{}, sentinel.ErrNotFound
}

func (s *PostgresExcursionStore) ListExcursionsByAdult(ctx context.Context, adultID id.AdultID) ([]Excursion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, adult_id, longitude, latitude, departed_at, returned_at, elapsed_outside
		FROM excursions WHERE adult_id = $1
		ORDER BY departed_at
	`, uuid.UUID(adultID))
	if err != nil {
		return nil, fmt.Errorf("list excursions: %w", err)
	}
	defer rows.Close()

	var out []Excursion
	for rows.Next() {
		excursion, err := scanExcursion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan excursion: %w", err)
		}
		out = append(out, excursion)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExcursion(row rowScanner) (Excursion, error) {
	var (
		excursion Excursion
		rawID     uuid.UUID
		adultID   uuid.UUID
		returned  sql.NullTime
		elapsed   sql.NullInt64
	)
	err := row.Scan(&rawID, &adultID, &excursion.Longitude, &excursion.Latitude,
		&excursion.DepartedAt, &returned, &elapsed)
	if err != nil {
		return Excursion{}, err
	}
	excursion.ID = id.RecordID(rawID)
	excursion.AdultID = id.AdultID(adultID)
	if returned.Valid {
		t := returned.Time
		excursion.ReturnedAt = &t
	}
	if elapsed.Valid {
		n := elapsed.Int64
		excursion.ElapsedOutside = &n
	}
	return excursion, nil
}
