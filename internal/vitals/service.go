package vitals

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"carelink/internal/platform/metrics"
	"carelink/internal/registry"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/requestcontext"
)

// Sanity bounds for caregiver-entered readings. Values outside these are data
// entry mistakes, not medical events.
const (
	minCelsius = 30.0
	maxCelsius = 45.0
	minMmHg    = 40
	maxMmHg    = 300
)

// AdultDirectory is the registry slice this service needs for the existence
// check that precedes every insert.
type AdultDirectory interface {
	FindAdultByID(ctx context.Context, adultID id.AdultID) (registry.Adult, error)
}

type Service struct {
	store   Store
	adults  AdultDirectory
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(store Store, adults AdultDirectory, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{store: store, adults: adults, metrics: m, logger: logger}
}

func (s *Service) RecordTemperature(ctx context.Context, req TemperatureRequest) (*Temperature, error) {
	adultID, err := s.checkAdult(ctx, req.AdultID)
	if err != nil {
		return nil, err
	}
	if req.Celsius < minCelsius || req.Celsius > maxCelsius {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "temperature out of plausible range")
	}

	t := Temperature{
		ID:         id.NewRecordID(),
		AdultID:    adultID,
		RecordedAt: requestcontext.Now(ctx),
		Celsius:    req.Celsius,
	}
	if err := s.store.CreateTemperature(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist temperature")
	}
	s.observe(ctx, "temperature", adultID)
	return &t, nil
}

func (s *Service) ListTemperatures(ctx context.Context, adultID id.AdultID) ([]Temperature, error) {
	if _, err := s.checkAdult(ctx, adultID.String()); err != nil {
		return nil, err
	}
	out, err := s.store.ListTemperaturesByAdult(ctx, adultID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list temperatures")
	}
	return out, nil
}

func (s *Service) RecordBloodPressure(ctx context.Context, req BloodPressureRequest) (*BloodPressure, error) {
	adultID, err := s.checkAdult(ctx, req.AdultID)
	if err != nil {
		return nil, err
	}
	for _, reading := range []int{req.Systolic, req.Diastolic} {
		if reading < minMmHg || reading > maxMmHg {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "blood pressure out of plausible range")
		}
	}
	if req.Diastolic >= req.Systolic {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "diastolic must be below systolic")
	}

	bp := BloodPressure{
		ID:         id.NewRecordID(),
		AdultID:    adultID,
		RecordedAt: requestcontext.Now(ctx),
		Systolic:   req.Systolic,
		Diastolic:  req.Diastolic,
	}
	if err := s.store.CreateBloodPressure(ctx, bp); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist blood pressure")
	}
	s.observe(ctx, "blood_pressure", adultID)
	return &bp, nil
}

func (s *Service) ListBloodPressures(ctx context.Context, adultID id.AdultID) ([]BloodPressure, error) {
	if _, err := s.checkAdult(ctx, adultID.String()); err != nil {
		return nil, err
	}
	out, err := s.store.ListBloodPressuresByAdult(ctx, adultID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blood pressures")
	}
	return out, nil
}

func (s *Service) RecordMedication(ctx context.Context, req MedicationRequest) (*MedicationReminder, error) {
	adultID, err := s.checkAdult(ctx, req.AdultID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Medicine) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "medicine name is required")
	}
	if req.IntervalHours <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "interval hours must be positive")
	}

	m := MedicationReminder{
		ID:            id.NewRecordID(),
		AdultID:       adultID,
		Medicine:      strings.TrimSpace(req.Medicine),
		Description:   strings.TrimSpace(req.Description),
		IntervalHours: req.IntervalHours,
		CreatedAt:     requestcontext.Now(ctx),
	}
	if err := s.store.CreateMedication(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist medication reminder")
	}
	s.observe(ctx, "medication", adultID)
	return &m, nil
}

func (s *Service) ListMedications(ctx context.Context, adultID id.AdultID) ([]MedicationReminder, error) {
	if _, err := s.checkAdult(ctx, adultID.String()); err != nil {
		return nil, err
	}
	out, err := s.store.ListMedicationsByAdult(ctx, adultID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list medication reminders")
	}
	return out, nil
}

func (s *Service) checkAdult(ctx context.Context, raw string) (id.AdultID, error) {
	adultID, err := id.ParseAdultID(raw)
	if err != nil {
		return id.AdultID{}, err
	}
	if _, err := s.adults.FindAdultByID(ctx, adultID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.AdultID{}, dErrors.New(dErrors.CodeNotFound, "adult not found")
		}
		return id.AdultID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up adult")
	}
	return adultID, nil
}

func (s *Service) observe(ctx context.Context, kind string, adultID id.AdultID) {
	if s.metrics != nil {
		s.metrics.ObserveTelemetryWrite(kind)
	}
	s.logger.InfoContext(ctx, "vitals recorded",
		"kind", kind,
		"adult_id", adultID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
