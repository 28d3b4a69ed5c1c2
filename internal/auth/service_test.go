package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"carelink/internal/audit"
	"carelink/internal/registry"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/requestcontext"
)

const testCap = 3

type authFixture struct {
	service  *Service
	accounts *registry.MemoryAccountStore
	adults   *registry.MemoryAdultStore
	audit    *audit.MemoryStore
	account  registry.Account
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	accounts := registry.NewMemoryAccountStore()
	adults := registry.NewMemoryAdultStore()
	auditStore := audit.NewMemoryStore()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	account := registry.Account{
		ID:           id.NewAccountID(),
		Username:     "maria",
		Email:        "maria@example.com",
		PasswordHash: string(hash),
		Phone:        "+34600000000",
		Role:         id.RoleCaregiver,
	}
	require.NoError(t, accounts.CreateAccount(context.Background(), account))

	service := NewService(
		accounts,
		adults,
		newTokens(),
		NewMemoryIndex(),
		audit.NewPublisher(auditStore),
		nil,
		slog.New(slog.DiscardHandler),
		testCap,
	)
	return &authFixture{
		service:  service,
		accounts: accounts,
		adults:   adults,
		audit:    auditStore,
		account:  account,
	}
}

func (f *authFixture) storedAccount(t *testing.T) registry.Account {
	t.Helper()
	account, err := f.accounts.FindAccountByID(context.Background(), f.account.ID)
	require.NoError(t, err)
	return account
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.service.Login(context.Background(), LoginRequest{
		Username: "maria",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.Empty(t, result.RememberedToken)
	assert.Equal(t, "caregiver", result.Role)
	assert.Equal(t, f.account.ID.String(), result.AccountID)
	assert.Empty(t, result.AdultID)

	// A plain login never touches the remembered set.
	assert.Empty(t, f.storedAccount(t).RememberedTokens)
}

func TestLogin_BootstrapsFirstAdult(t *testing.T) {
	f := newAuthFixture(t)
	adult := registry.Adult{ID: id.NewAdultID(), Name: "Rosa", AccountID: f.account.ID}
	require.NoError(t, f.adults.CreateAdult(context.Background(), adult))

	result, err := f.service.Login(context.Background(), LoginRequest{
		Username: "maria",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, adult.ID.String(), result.AdultID)
}

func TestLogin_UniformUnauthorized(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "unknown username", username: "nobody", password: "hunter22"},
		{name: "wrong password", username: "maria", password: "wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Login(context.Background(), LoginRequest{
				Username: tt.username,
				Password: tt.password,
			})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
			// The message must not distinguish the two causes.
			assert.Equal(t, "invalid username or password", dErrors.MessageOf(err))
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Login(context.Background(), LoginRequest{Username: "maria"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

type offlineAdultDirectory struct{}

func (offlineAdultDirectory) ListAdultsByAccount(context.Context, id.AccountID) ([]registry.Adult, error) {
	return nil, errors.New("directory offline")
}

func TestLogin_AdultsLookupFailureLeavesNoRememberedDigest(t *testing.T) {
	f := newAuthFixture(t)
	f.service.adults = offlineAdultDirectory{}

	_, err := f.service.Login(context.Background(), LoginRequest{
		Username:       "maria",
		Password:       "hunter22",
		RememberDevice: true,
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	// Failed logins persist nothing; no orphan digest may survive.
	assert.Empty(t, f.storedAccount(t).RememberedTokens)
}

func TestLogin_RememberDevice(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.service.Login(context.Background(), LoginRequest{
		Username:       "maria",
		Password:       "hunter22",
		RememberDevice: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.RememberedToken)

	stored := f.storedAccount(t).RememberedTokens
	require.Len(t, stored, 1)
	// Only the digest is persisted, never the raw token.
	assert.Equal(t, Digest(result.RememberedToken), stored[0])
	assert.NotContains(t, stored, result.RememberedToken)
}

func TestLogin_RememberedSetGrowsPerLogin(t *testing.T) {
	f := newAuthFixture(t)

	for i := 1; i <= testCap; i++ {
		_, err := f.service.Login(context.Background(), LoginRequest{
			Username:       "maria",
			Password:       "hunter22",
			RememberDevice: true,
		})
		require.NoError(t, err)
		assert.Len(t, f.storedAccount(t).RememberedTokens, i)
	}
}

func TestLogin_CapEvictsOldest(t *testing.T) {
	f := newAuthFixture(t)

	tokens := make([]string, 0, testCap+1)
	for i := 0; i < testCap+1; i++ {
		result, err := f.service.Login(context.Background(), LoginRequest{
			Username:       "maria",
			Password:       "hunter22",
			RememberDevice: true,
		})
		require.NoError(t, err)
		tokens = append(tokens, result.RememberedToken)
	}

	stored := f.storedAccount(t).RememberedTokens
	require.Len(t, stored, testCap)
	assert.NotContains(t, stored, Digest(tokens[0]))
	assert.Contains(t, stored, Digest(tokens[1]))
	assert.Contains(t, stored, Digest(tokens[testCap]))
}

func TestValidateRemembered(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.service.Login(context.Background(), LoginRequest{
		Username:       "maria",
		Password:       "hunter22",
		RememberDevice: true,
	})
	require.NoError(t, err)

	claims, err := f.service.ValidateRemembered(context.Background(), result.RememberedToken)
	require.NoError(t, err)
	assert.Equal(t, f.account.ID.String(), claims.AccountID)
}

func TestValidateRemembered_EvictedTokenIsDead(t *testing.T) {
	f := newAuthFixture(t)

	var first string
	for i := 0; i < testCap+1; i++ {
		result, err := f.service.Login(context.Background(), LoginRequest{
			Username:       "maria",
			Password:       "hunter22",
			RememberDevice: true,
		})
		require.NoError(t, err)
		if i == 0 {
			first = result.RememberedToken
		}
	}

	// Valid signature, valid expiry, but no longer a member of the set.
	_, err := f.service.ValidateRemembered(context.Background(), first)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRemembered_ColdIndexFallsBackToStore(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.service.Login(context.Background(), LoginRequest{
		Username:       "maria",
		Password:       "hunter22",
		RememberDevice: true,
	})
	require.NoError(t, err)

	// Fresh index simulates a cache wipe; the store stays authoritative.
	f.service.index = NewMemoryIndex()
	_, err = f.service.ValidateRemembered(context.Background(), result.RememberedToken)
	require.NoError(t, err)
}

func TestForgetDevice(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.service.Login(context.Background(), LoginRequest{
		Username:       "maria",
		Password:       "hunter22",
		RememberDevice: true,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.ForgetDevice(context.Background(), f.account.ID, result.RememberedToken))
	assert.Empty(t, f.storedAccount(t).RememberedTokens)

	_, err = f.service.ValidateRemembered(context.Background(), result.RememberedToken)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestForgetDevice_WrongAccount(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.service.Login(context.Background(), LoginRequest{
		Username:       "maria",
		Password:       "hunter22",
		RememberDevice: true,
	})
	require.NoError(t, err)

	err = f.service.ForgetDevice(context.Background(), id.NewAccountID(), result.RememberedToken)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestLogin_AuditTrail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := requestcontext.WithClientMetadata(context.Background(), "203.0.113.7",
		"Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 Chrome/120.0 Safari/537.36")

	_, err := f.service.Login(ctx, LoginRequest{
		Username:       "maria",
		Password:       "hunter22",
		RememberDevice: true,
	})
	require.NoError(t, err)

	events, err := f.audit.ListByAccount(ctx, f.account.ID.String())
	require.NoError(t, err)
	kinds := make([]audit.Kind, 0, len(events))
	for _, event := range events {
		kinds = append(kinds, event.Kind)
	}
	assert.Contains(t, kinds, audit.EventDeviceRemembered)
	assert.Contains(t, kinds, audit.EventLogin)
}

func TestLogin_UsesRequestTime(t *testing.T) {
	f := newAuthFixture(t)
	issued := time.Now().UTC().Truncate(time.Second)
	ctx := requestcontext.WithTime(context.Background(), issued)

	result, err := f.service.Login(ctx, LoginRequest{Username: "maria", Password: "hunter22"})
	require.NoError(t, err)

	claims, err := f.service.tokens.ValidateAccess(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issued.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}
