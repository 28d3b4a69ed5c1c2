package vitals

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "carelink/pkg/domain"
)

// PostgresStore persists vitals rows in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateTemperature(ctx context.Context, t Temperature) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO temperatures (id, adult_id, recorded_at, celsius)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(t.ID), uuid.UUID(t.AdultID), t.RecordedAt, t.Celsius)
	if err != nil {
		return fmt.Errorf("create temperature: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTemperaturesByAdult(ctx context.Context, adultID id.AdultID) ([]Temperature, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, adult_id, recorded_at, celsius
		FROM temperatures WHERE adult_id = $1
		ORDER BY recorded_at
	`, uuid.UUID(adultID))
	if err != nil {
		return nil, fmt.Errorf("list temperatures: %w", err)
	}
	defer rows.Close()

	out := make([]Temperature, 0)
	for rows.Next() {
		var (
			t       Temperature
			rawID   uuid.UUID
			rawAdId uuid.UUID
		)
		if err := rows.Scan(&rawID, &rawAdId, &t.RecordedAt, &t.Celsius); err != nil {
			return nil, fmt.Errorf("scan temperature: %w", err)
		}
		t.ID = id.RecordID(rawID)
		t.AdultID = id.AdultID(rawAdId)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateBloodPressure(ctx context.Context, bp BloodPressure) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blood_pressures (id, adult_id, recorded_at, systolic, diastolic)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(bp.ID), uuid.UUID(bp.AdultID), bp.RecordedAt, bp.Systolic, bp.Diastolic)
	if err != nil {
		return fmt.Errorf("create blood pressure: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBloodPressuresByAdult(ctx context.Context, adultID id.AdultID) ([]BloodPressure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, adult_id, recorded_at, systolic, diastolic
		FROM blood_pressures WHERE adult_id = $1
		ORDER BY recorded_at
	`, uuid.UUID(adultID))
	if err != nil {
		return nil, fmt.Errorf("list blood pressures: %w", err)
	}
	defer rows.Close()

	out := make([]BloodPressure, 0)
	for rows.Next() {
		var (
			bp      BloodPressure
			rawID   uuid.UUID
			rawAdId uuid.UUID
		)
		if err := rows.Scan(&rawID, &rawAdId, &bp.RecordedAt, &bp.Systolic, &bp.Diastolic); err != nil {
			return nil, fmt.Errorf("scan blood pressure: %w", err)
		}
		bp.ID = id.RecordID(rawID)
		bp.AdultID = id.AdultID(rawAdId)
		out = append(out, bp)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateMedication(ctx context.Context, m MedicationReminder) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO medication_reminders (id, adult_id, medicine, description, interval_hours, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(m.ID), uuid.UUID(m.AdultID), m.Medicine, m.Description, m.IntervalHours, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create medication reminder: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMedicationsByAdult(ctx context.Context, adultID id.AdultID) ([]MedicationReminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, adult_id, medicine, description, interval_hours, created_at
		FROM medication_reminders WHERE adult_id = $1
		ORDER BY created_at
	`, uuid.UUID(adultID))
	if err != nil {
		return nil, fmt.Errorf("list medication reminders: %w", err)
	}
	defer rows.Close()

	out := make([]MedicationReminder, 0)
	for rows.Next() {
		var (
			m       MedicationReminder
			rawID   uuid.UUID
			rawAdId uuid.UUID
		)
		if err := rows.Scan(&rawID, &rawAdId, &m.Medicine, &m.Description, &m.IntervalHours, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan medication reminder: %w", err)
		}
		m.ID = id.RecordID(rawID)
		m.AdultID = id.AdultID(rawAdId)
		out = append(out, m)
	}
	return out, rows.Err()
}
