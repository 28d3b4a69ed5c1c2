package registry

import (
	"context"

	id "carelink/pkg/domain"
)

// AccountStore persists caregiver accounts.
//
// Implementations return sentinel.ErrNotFound for missing accounts and
// sentinel.ErrConflict for username/email uniqueness violations.
type AccountStore interface {
	CreateAccount(ctx context.Context, account Account) error
	FindAccountByID(ctx context.Context, accountID id.AccountID) (Account, error)
	FindAccountByUsername(ctx context.Context, username string) (Account, error)

	// AppendRememberedToken atomically appends a token digest to the account's
	// remembered set, evicting oldest entries beyond cap. Two concurrent
	// appends for the same account must both survive; implementations must not
	// do a read-modify-save round trip outside their own locking.
	// Returns the number of evicted digests.
	AppendRememberedToken(ctx context.Context, accountID id.AccountID, digest string, cap int) (int, error)

	// RemoveRememberedToken removes one digest; removing an absent digest is
	// not an error.
	RemoveRememberedToken(ctx context.Context, accountID id.AccountID, digest string) error
}

// AdultStore persists monitored adults.
type AdultStore interface {
	CreateAdult(ctx context.Context, adult Adult) error
	FindAdultByID(ctx context.Context, adultID id.AdultID) (Adult, error)
	// FindAdultsByIDs returns the subset of requested adults that exist,
	// in no particular order.
	FindAdultsByIDs(ctx context.Context, adultIDs []id.AdultID) ([]Adult, error)
	ListAdultsByAccount(ctx context.Context, accountID id.AccountID) ([]Adult, error)
}
