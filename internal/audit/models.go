// Package audit captures structured, append-only audit events for the
// security-relevant operations: logins, device changes, telemetry writes.
package audit

import (
	"time"

	id "carelink/pkg/domain"
)

// Kind enumerates the audited operations.
type Kind string

const (
	EventLogin            Kind = "auth.login"
	EventLoginFailed      Kind = "auth.login_failed"
	EventDeviceRemembered Kind = "auth.device_remembered"
	EventDeviceForgotten  Kind = "auth.device_forgotten"
	EventPresenceRecorded Kind = "presence.recorded"
	EventExcursionStarted Kind = "excursion.started"
	EventExcursionClosed  Kind = "excursion.closed"
)

// Event is one audit record. AccountID and AdultID are optional depending on
// the kind.
type Event struct {
	ID        id.RecordID       `json:"id"`
	Kind      Kind              `json:"kind"`
	AccountID string            `json:"account_id,omitempty"`
	AdultID   string            `json:"adult_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}
