package vitals

import (
	"context"
	"sync"

	id "carelink/pkg/domain"
)

// MemoryStore backs unit tests and dev mode.
type MemoryStore struct {
	mu           sync.RWMutex
	temperatures []Temperature
	pressures    []BloodPressure
	medications  []MedicationReminder
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreateTemperature(_ context.Context, t Temperature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temperatures = append(s.temperatures, t)
	return nil
}

func (s *MemoryStore) ListTemperaturesByAdult(_ context.Context, adultID id.AdultID) ([]Temperature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Temperature, 0)
	for _, t := range s.temperatures {
		if t.AdultID == adultID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateBloodPressure(_ context.Context, bp BloodPressure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pressures = append(s.pressures, bp)
	return nil
}

func (s *MemoryStore) ListBloodPressuresByAdult(_ context.Context, adultID id.AdultID) ([]BloodPressure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BloodPressure, 0)
	for _, bp := range s.pressures {
		if bp.AdultID == adultID {
			out = append(out, bp)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateMedication(_ context.Context, m MedicationReminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.medications = append(s.medications, m)
	return nil
}

func (s *MemoryStore) ListMedicationsByAdult(_ context.Context, adultID id.AdultID) ([]MedicationReminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MedicationReminder, 0)
	for _, m := range s.medications {
		if m.AdultID == adultID {
			out = append(out, m)
		}
	}
	return out, nil
}
