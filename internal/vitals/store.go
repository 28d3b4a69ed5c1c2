package vitals

import (
	"context"

	id "carelink/pkg/domain"
)

// Store persists vitals rows. Lists return insertion order; absence of rows
// is an empty slice, never an error.
type Store interface {
	CreateTemperature(ctx context.Context, t Temperature) error
	ListTemperaturesByAdult(ctx context.Context, adultID id.AdultID) ([]Temperature, error)

	CreateBloodPressure(ctx context.Context, bp BloodPressure) error
	ListBloodPressuresByAdult(ctx context.Context, adultID id.AdultID) ([]BloodPressure, error)

	CreateMedication(ctx context.Context, m MedicationReminder) error
	ListMedicationsByAdult(ctx context.Context, adultID id.AdultID) ([]MedicationReminder, error)
}
