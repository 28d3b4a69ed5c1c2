// Package vitals stores caregiver-entered health telemetry: temperatures,
// blood pressures and medication reminders. Pure pass-through with numeric
// sanity guards; interpretation (alerting thresholds) lives with the reader.
package vitals

import (
	"time"

	id "carelink/pkg/domain"
)

type Temperature struct {
	ID         id.RecordID `json:"id"`
	AdultID    id.AdultID  `json:"adultId"`
	RecordedAt time.Time   `json:"recordedAt"`
	Celsius    float64     `json:"celsius"`
}

type BloodPressure struct {
	ID         id.RecordID `json:"id"`
	AdultID    id.AdultID  `json:"adultId"`
	RecordedAt time.Time   `json:"recordedAt"`
	Systolic   int         `json:"systolic"`
	Diastolic  int         `json:"diastolic"`
}

type MedicationReminder struct {
	ID            id.RecordID `json:"id"`
	AdultID       id.AdultID  `json:"adultId"`
	Medicine      string      `json:"medicine"`
	Description   string      `json:"description"`
	IntervalHours int         `json:"intervalHours"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// TemperatureRequest is a decoded temperature report.
type TemperatureRequest struct {
	AdultID string  `json:"adultId"`
	Celsius float64 `json:"celsius"`
}

type BloodPressureRequest struct {
	AdultID   string `json:"adultId"`
	Systolic  int    `json:"systolic"`
	Diastolic int    `json:"diastolic"`
}

type MedicationRequest struct {
	AdultID       string `json:"adultId"`
	Medicine      string `json:"medicine"`
	Description   string `json:"description"`
	IntervalHours int    `json:"intervalHours"`
}
