package registry

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/asaskevich/govalidator"
	"golang.org/x/crypto/bcrypt"

	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/requestcontext"
)

// Service implements account and adult registration plus the merged reads the
// dashboard bootstraps from.
type Service struct {
	accounts AccountStore
	adults   AdultStore
	logger   *slog.Logger
}

func NewService(accounts AccountStore, adults AdultStore, logger *slog.Logger) *Service {
	return &Service{accounts: accounts, adults: adults, logger: logger}
}

// RegisterAccount validates and creates a caregiver account. The password is
// bcrypt-hashed before anything is persisted; the plaintext never leaves this
// function.
func (s *Service) RegisterAccount(ctx context.Context, req RegisterAccountRequest) (id.AccountID, error) {
	if err := validateRegisterAccount(req); err != nil {
		return id.AccountID{}, err
	}
	role, err := id.ParseRole(req.Role)
	if err != nil {
		return id.AccountID{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return id.AccountID{}, dErrors.New(dErrors.CodeInvalidInput, "password is too long")
		}
		return id.AccountID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	account := Account{
		ID:           id.NewAccountID(),
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
		CreatedAt:    requestcontext.Now(ctx),
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return id.AccountID{}, dErrors.New(dErrors.CodeConflict, "username or email already registered")
		}
		return id.AccountID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	s.logger.InfoContext(ctx, "account registered",
		"account_id", account.ID.String(),
		"role", account.Role.String(),
	)
	return account.ID, nil
}

// RegisterAdult creates a monitored adult under an existing account. The
// account existence check strictly precedes the insert so no adult row can
// reference a nonexistent account.
func (s *Service) RegisterAdult(ctx context.Context, req RegisterAdultRequest) (id.AdultID, error) {
	if err := validateRegisterAdult(req); err != nil {
		return id.AdultID{}, err
	}
	accountID, err := id.ParseAccountID(req.AccountID)
	if err != nil {
		return id.AdultID{}, err
	}

	if _, err := s.accounts.FindAccountByID(ctx, accountID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.AdultID{}, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return id.AdultID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}

	adult := Adult{
		ID:                 id.NewAdultID(),
		Name:               strings.TrimSpace(req.Name),
		Age:                req.Age,
		BloodPressureLimit: req.BloodPressureLimit,
		RoomTimeLimit:      req.RoomTimeLimit,
		AccountID:          accountID,
		CreatedAt:          requestcontext.Now(ctx),
	}
	if err := s.adults.CreateAdult(ctx, adult); err != nil {
		return id.AdultID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create adult")
	}

	s.logger.InfoContext(ctx, "adult registered",
		"adult_id", adult.ID.String(),
		"account_id", accountID.String(),
	)
	return adult.ID, nil
}

// GetAdult returns the adult merged with the owning account's display fields.
func (s *Service) GetAdult(ctx context.Context, adultID id.AdultID) (*AdultProfile, error) {
	adult, err := s.adults.FindAdultByID(ctx, adultID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "adult not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up adult")
	}

	account, err := s.accounts.FindAccountByID(ctx, adult.AccountID)
	if err != nil {
		// An adult without its account is a data integrity fault, not a 404.
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up owning account")
	}

	return &AdultProfile{
		Adult:          adult,
		CaregiverName:  account.Username,
		CaregiverEmail: account.Email,
		CaregiverPhone: account.Phone,
	}, nil
}

// ListAdultsByAccount lists the adults owned by one account, oldest first.
func (s *Service) ListAdultsByAccount(ctx context.Context, accountID id.AccountID) ([]Adult, error) {
	adults, err := s.adults.ListAdultsByAccount(ctx, accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list adults")
	}
	return adults, nil
}

func validateRegisterAccount(req RegisterAccountRequest) error {
	if !govalidator.StringLength(strings.TrimSpace(req.Username), "3", "50") {
		return dErrors.New(dErrors.CodeInvalidInput, "username must be 3-50 characters")
	}
	if !govalidator.IsEmail(req.Email) {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid email")
	}
	if len(req.Password) < 8 {
		return dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	if strings.TrimSpace(req.Phone) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "phone is required")
	}
	return nil
}

func validateRegisterAdult(req RegisterAdultRequest) error {
	if !govalidator.StringLength(strings.TrimSpace(req.Name), "1", "100") {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if req.Age <= 0 || req.Age > 130 {
		return dErrors.New(dErrors.CodeInvalidInput, "age out of range")
	}
	if req.BloodPressureLimit <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "blood pressure limit must be positive")
	}
	if req.RoomTimeLimit <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "room time limit must be positive")
	}
	return nil
}
