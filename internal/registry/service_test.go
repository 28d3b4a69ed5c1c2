package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
)

func newTestService() (*Service, *MemoryAccountStore, *MemoryAdultStore) {
	accounts := NewMemoryAccountStore()
	adults := NewMemoryAdultStore()
	return NewService(accounts, adults, slog.New(slog.DiscardHandler)), accounts, adults
}

func validAccountRequest() RegisterAccountRequest {
	return RegisterAccountRequest{
		Username: "maria",
		Email:    "Maria@Example.com",
		Password: "hunter22!",
		Phone:    "+34600000000",
		Role:     "caregiver",
	}
}

func TestRegisterAccount(t *testing.T) {
	svc, accounts, _ := newTestService()

	accountID, err := svc.RegisterAccount(context.Background(), validAccountRequest())
	require.NoError(t, err)
	assert.False(t, accountID.IsNil())

	stored, err := accounts.FindAccountByID(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, "maria", stored.Username)
	assert.Equal(t, "maria@example.com", stored.Email)
	assert.Equal(t, id.RoleCaregiver, stored.Role)
	// Only the bcrypt hash is stored.
	assert.NotEqual(t, "hunter22!", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22!")))
}

func TestRegisterAccount_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name   string
		mutate func(*RegisterAccountRequest)
	}{
		{name: "short username", mutate: func(r *RegisterAccountRequest) { r.Username = "ab" }},
		{name: "bad email", mutate: func(r *RegisterAccountRequest) { r.Email = "not-an-email" }},
		{name: "short password", mutate: func(r *RegisterAccountRequest) { r.Password = "short" }},
		{name: "missing phone", mutate: func(r *RegisterAccountRequest) { r.Phone = "  " }},
		{name: "unknown role", mutate: func(r *RegisterAccountRequest) { r.Role = "admin" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validAccountRequest()
			tt.mutate(&req)
			_, err := svc.RegisterAccount(context.Background(), req)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "got %v", err)
		})
	}
}

func TestRegisterAccount_DuplicateConflict(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.RegisterAccount(context.Background(), validAccountRequest())
	require.NoError(t, err)

	_, err = svc.RegisterAccount(context.Background(), validAccountRequest())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRegisterAdult(t *testing.T) {
	svc, _, _ := newTestService()
	accountID, err := svc.RegisterAccount(context.Background(), validAccountRequest())
	require.NoError(t, err)

	adultID, err := svc.RegisterAdult(context.Background(), RegisterAdultRequest{
		Name:               "Rosa",
		Age:                84,
		BloodPressureLimit: 140,
		RoomTimeLimit:      3600,
		AccountID:          accountID.String(),
	})
	require.NoError(t, err)

	profile, err := svc.GetAdult(context.Background(), adultID)
	require.NoError(t, err)
	assert.Equal(t, "Rosa", profile.Adult.Name)
	assert.Equal(t, "maria", profile.CaregiverName)
	assert.Equal(t, "maria@example.com", profile.CaregiverEmail)
}

func TestRegisterAdult_AccountMissing(t *testing.T) {
	svc, _, _ := newTestService()

	req := RegisterAdultRequest{
		Name:               "Rosa",
		Age:                84,
		BloodPressureLimit: 140,
		RoomTimeLimit:      3600,
	}

	// Malformed account reference is a validation failure.
	req.AccountID = "not-a-uuid"
	_, err := svc.RegisterAdult(context.Background(), req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	// Well-formed but absent account is a missing reference.
	req.AccountID = id.NewAccountID().String()
	_, err = svc.RegisterAdult(context.Background(), req)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestGetAdult_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetAdult(context.Background(), id.NewAdultID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestListAdultsByAccount_OldestFirst(t *testing.T) {
	svc, _, _ := newTestService()
	accountID, err := svc.RegisterAccount(context.Background(), validAccountRequest())
	require.NoError(t, err)

	for _, name := range []string{"Rosa", "Miguel", "Carmen"} {
		_, err := svc.RegisterAdult(context.Background(), RegisterAdultRequest{
			Name:               name,
			Age:                80,
			BloodPressureLimit: 140,
			RoomTimeLimit:      3600,
			AccountID:          accountID.String(),
		})
		require.NoError(t, err)
	}

	adults, err := svc.ListAdultsByAccount(context.Background(), accountID)
	require.NoError(t, err)
	require.Len(t, adults, 3)
	assert.Equal(t, "Rosa", adults[0].Name)
	assert.Equal(t, "Carmen", adults[2].Name)
}
