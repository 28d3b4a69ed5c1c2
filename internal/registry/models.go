// Package registry owns the Account and Adult domain objects every telemetry
// collection references, and the registration/read operations over them.
package registry

import (
	"time"

	id "carelink/pkg/domain"
)

// Account is a caregiver's login identity. It owns its remembered-token set
// and its adults by reference.
type Account struct {
	ID           id.AccountID
	Username     string
	Email        string
	PasswordHash string
	Phone        string
	Role         id.Role
	// RememberedTokens holds SHA-256 digests of issued long-lived tokens,
	// oldest first. Never the raw token.
	RememberedTokens []string
	CreatedAt        time.Time
}

// Adult is a monitored person. Read-only after registration.
type Adult struct {
	ID   id.AdultID
	Name string
	Age  int
	// BloodPressureLimit is the systolic threshold for downstream alerting.
	BloodPressureLimit int
	// RoomTimeLimit is the presence-duration alert threshold in seconds.
	RoomTimeLimit int64
	AccountID     id.AccountID
	CreatedAt     time.Time
}

// AdultProfile is an adult merged with the owning account's display fields,
// the shape a caregiver dashboard reads.
type AdultProfile struct {
	Adult          Adult
	CaregiverName  string
	CaregiverEmail string
	CaregiverPhone string
}

// RegisterAccountRequest carries the fields of a new caregiver registration.
type RegisterAccountRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// RegisterAdultRequest carries the fields of a new monitored adult.
type RegisterAdultRequest struct {
	Name               string `json:"name"`
	Age                int    `json:"age"`
	BloodPressureLimit int    `json:"bloodPressureLimit"`
	RoomTimeLimit      int64  `json:"roomTimeLimitSeconds"`
	AccountID          string `json:"accountId"`
}
