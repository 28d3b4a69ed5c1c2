// Package presence is the server-authoritative time-window engine. Edge
// devices report "near beacon Z for about N seconds" with no trustworthy
// clock; every stored timestamp is derived from the server's clock plus the
// device-supplied duration, never from a device-supplied timestamp.
package presence

import (
	"time"

	id "carelink/pkg/domain"
)

// DefaultReportSeconds bounds a presence report whose device omitted the
// duration under transient conditions.
const DefaultReportSeconds int64 = 10

// Event is one room/zone visit. Append-only: a new report always creates a
// new event, closed events are never reopened or mutated.
type Event struct {
	ID id.RecordID
	// AdultIDs allows the group-presence variant (several adults near one
	// beacon in one report).
	AdultIDs        []id.AdultID
	Zone            string
	ReportedSeconds int64
	EnteredAt       time.Time
	ExpectedExitAt  time.Time
}

// Excursion is one outdoor departure/return pair. Open until ReturnedAt is
// set; ElapsedOutside is only defined on closed excursions and always equals
// ReturnedAt − DepartedAt in seconds.
type Excursion struct {
	ID             id.RecordID
	AdultID        id.AdultID
	Longitude      float64
	Latitude       float64
	DepartedAt     time.Time
	ReturnedAt     *time.Time
	ElapsedOutside *int64
}

// ReportRequest is a decoded presence report.
type ReportRequest struct {
	AdultIDs        []string
	Zone            string
	DurationSeconds *int64
}

// Confirmation is the human-readable payload returned with a created event.
type Confirmation struct {
	AdultName string    `json:"adulto"`
	Zone      string    `json:"lugar"`
	EnteredAt time.Time `json:"hora"`
}

// HistoryRecord is one presence row shaped for the caregiver dashboard.
type HistoryRecord struct {
	Zone            string    `json:"zoneLabel"`
	DurationSeconds int64     `json:"durationSeconds"`
	EntryTime       time.Time `json:"entryTime"`
	ExitTime        time.Time `json:"exitTime"`
	AdultName       string    `json:"adultName"`
}

// ExcursionStartRequest is a decoded excursion start report. Coordinates are
// longitude, latitude order (the proximity-index convention). A set
// ReturnedAt reports an already-finished excursion in one call.
type ExcursionStartRequest struct {
	AdultID     string
	Coordinates []float64
	DepartedAt  *time.Time
	ReturnedAt  *time.Time
}
