package domain

import dErrors "carelink/pkg/domain-errors"

// Role tags a caregiver account and rides inside the short-lived token claims.
// Invariant: the value must be one of the supported roles.
//
// Usage: construct via ParseRole at trust boundaries to enforce the allowlist;
// direct casting bypasses validation.
type Role string

// Supported account roles.
const (
	RoleCaregiver Role = "caregiver"
	RoleFamily    Role = "family"
	RoleClinician Role = "clinician"
)

// validRoles is the single source of truth for valid roles.
var validRoles = map[Role]bool{
	RoleCaregiver: true,
	RoleFamily:    true,
	RoleClinician: true,
}

// ParseRole constructs a Role from external input.
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
