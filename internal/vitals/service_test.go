package vitals

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carelink/internal/registry"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/requestcontext"
)

func newTestService(t *testing.T) (*Service, registry.Adult) {
	t.Helper()
	adults := registry.NewMemoryAdultStore()
	adult := registry.Adult{
		ID:        id.NewAdultID(),
		Name:      "Rosa",
		Age:       82,
		AccountID: id.NewAccountID(),
	}
	require.NoError(t, adults.CreateAdult(context.Background(), adult))
	svc := NewService(NewMemoryStore(), adults, nil, slog.New(slog.DiscardHandler))
	return svc, adult
}

func TestRecordTemperature(t *testing.T) {
	svc, adult := newTestService(t)
	now := time.Date(2026, 3, 1, 7, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	reading, err := svc.RecordTemperature(ctx, TemperatureRequest{
		AdultID: adult.ID.String(),
		Celsius: 37.2,
	})
	require.NoError(t, err)
	assert.Equal(t, 37.2, reading.Celsius)
	assert.Equal(t, now, reading.RecordedAt)

	list, err := svc.ListTemperatures(ctx, adult.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, reading.ID, list[0].ID)
}

func TestRecordTemperature_Guards(t *testing.T) {
	svc, adult := newTestService(t)

	tests := []struct {
		name string
		req  TemperatureRequest
		code dErrors.Code
	}{
		{
			name: "too cold",
			req:  TemperatureRequest{AdultID: adult.ID.String(), Celsius: 25},
			code: dErrors.CodeInvalidInput,
		},
		{
			name: "too hot",
			req:  TemperatureRequest{AdultID: adult.ID.String(), Celsius: 46},
			code: dErrors.CodeInvalidInput,
		},
		{
			name: "malformed adult id",
			req:  TemperatureRequest{AdultID: "nope", Celsius: 37},
			code: dErrors.CodeInvalidInput,
		},
		{
			name: "unknown adult",
			req:  TemperatureRequest{AdultID: id.NewAdultID().String(), Celsius: 37},
			code: dErrors.CodeNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordTemperature(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestRecordBloodPressure(t *testing.T) {
	svc, adult := newTestService(t)

	bp, err := svc.RecordBloodPressure(context.Background(), BloodPressureRequest{
		AdultID:   adult.ID.String(),
		Systolic:  128,
		Diastolic: 82,
	})
	require.NoError(t, err)
	assert.Equal(t, 128, bp.Systolic)
	assert.Equal(t, 82, bp.Diastolic)
}

func TestRecordBloodPressure_Guards(t *testing.T) {
	svc, adult := newTestService(t)

	tests := []struct {
		name                string
		systolic, diastolic int
	}{
		{name: "systolic too low", systolic: 30, diastolic: 60},
		{name: "diastolic too high", systolic: 200, diastolic: 310},
		{name: "diastolic above systolic", systolic: 80, diastolic: 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordBloodPressure(context.Background(), BloodPressureRequest{
				AdultID:   adult.ID.String(),
				Systolic:  tt.systolic,
				Diastolic: tt.diastolic,
			})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "got %v", err)
		})
	}
}

func TestRecordMedication(t *testing.T) {
	svc, adult := newTestService(t)

	m, err := svc.RecordMedication(context.Background(), MedicationRequest{
		AdultID:       adult.ID.String(),
		Medicine:      "enalapril",
		Description:   "with breakfast",
		IntervalHours: 24,
	})
	require.NoError(t, err)
	assert.Equal(t, "enalapril", m.Medicine)

	list, err := svc.ListMedications(context.Background(), adult.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestRecordMedication_Guards(t *testing.T) {
	svc, adult := newTestService(t)

	_, err := svc.RecordMedication(context.Background(), MedicationRequest{
		AdultID:       adult.ID.String(),
		Medicine:      "  ",
		IntervalHours: 8,
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = svc.RecordMedication(context.Background(), MedicationRequest{
		AdultID:       adult.ID.String(),
		Medicine:      "enalapril",
		IntervalHours: 0,
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestListVitals_EmptyIsEmpty(t *testing.T) {
	svc, adult := newTestService(t)

	temps, err := svc.ListTemperatures(context.Background(), adult.ID)
	require.NoError(t, err)
	assert.Empty(t, temps)

	pressures, err := svc.ListBloodPressures(context.Background(), adult.ID)
	require.NoError(t, err)
	assert.Empty(t, pressures)
}

func TestListVitals_UnknownAdult(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ListTemperatures(context.Background(), id.NewAdultID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
