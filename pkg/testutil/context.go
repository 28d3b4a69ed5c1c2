package testutil

import (
	"net/http"
	"time"

	id "carelink/pkg/domain"
	"carelink/pkg/requestcontext"
)

// WithAccount stamps the request context the way the auth middleware would
// for an authenticated caller. Invalid IDs are silently ignored.
func WithAccount(req *http.Request, accountID string, role id.Role) *http.Request {
	parsed, err := id.ParseAccountID(accountID)
	if err != nil {
		return req
	}
	ctx := requestcontext.WithAccountID(req.Context(), parsed)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithRequestTime pins the server clock seen by handlers under test.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
