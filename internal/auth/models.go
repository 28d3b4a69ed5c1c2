// Package auth authenticates caregiver credentials and issues the two
// differently-scoped session artifacts: a short-lived access token for every
// login and an optional long-lived remembered-device token.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest carries a login attempt.
type LoginRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	RememberDevice bool   `json:"rememberDevice"`
}

// LoginResult is the login response payload. RememberedToken is set only when
// RememberDevice was requested; AdultID is the caller's first registered
// adult, letting one login response bootstrap the dashboard.
type LoginResult struct {
	AccessToken     string
	RememberedToken string
	Role            string
	AccountID       string
	AdultID         string
}

// Claims are the JWT claims shared by both token lifetimes. Phone is the
// device-routable contact field downstream alerting dials.
type Claims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
	jwt.RegisteredClaims
}
