// Package domain holds the typed identifiers and small value types shared by
// every feature package. IDs wrap uuid.UUID so the compiler keeps an account
// id from being handed to a function expecting an adult id.
package domain

import (
	"github.com/google/uuid"

	dErrors "carelink/pkg/domain-errors"
)

// AccountID identifies a caregiver account.
type AccountID uuid.UUID

// AdultID identifies a monitored adult.
type AdultID uuid.UUID

// RecordID identifies one telemetry row (presence event, excursion, vital).
type RecordID uuid.UUID

// NewAccountID generates a fresh account id.
func NewAccountID() AccountID { return AccountID(uuid.New()) }

// NewAdultID generates a fresh adult id.
func NewAdultID() AdultID { return AdultID(uuid.New()) }

// NewRecordID generates a fresh record id.
func NewRecordID() RecordID { return RecordID(uuid.New()) }

func (id AccountID) String() string { return uuid.UUID(id).String() }
func (id AdultID) String() string   { return uuid.UUID(id).String() }
func (id RecordID) String() string  { return uuid.UUID(id).String() }

func (id AccountID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AdultID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id RecordID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// ParseAccountID constructs an AccountID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or nil.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s, "account id")
	if err != nil {
		return AccountID{}, err
	}
	return AccountID(u), nil
}

// ParseAdultID constructs an AdultID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or nil.
func ParseAdultID(s string) (AdultID, error) {
	u, err := parseUUID(s, "adult id")
	if err != nil {
		return AdultID{}, err
	}
	return AdultID(u), nil
}

// ParseRecordID constructs a RecordID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or nil.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s, "record id")
	if err != nil {
		return RecordID{}, err
	}
	return RecordID(u), nil
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be nil")
	}
	return u, nil
}
