package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"golang.org/x/crypto/bcrypt"

	"carelink/internal/audit"
	"carelink/internal/platform/metrics"
	"carelink/internal/registry"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/requestcontext"
)

// AccountStore is the slice of the registry store this service needs.
type AccountStore interface {
	FindAccountByID(ctx context.Context, accountID id.AccountID) (registry.Account, error)
	FindAccountByUsername(ctx context.Context, username string) (registry.Account, error)
	AppendRememberedToken(ctx context.Context, accountID id.AccountID, digest string, cap int) (int, error)
	RemoveRememberedToken(ctx context.Context, accountID id.AccountID, digest string) error
}

// AdultDirectory resolves the adults owned by an account, for the login
// bootstrap field.
type AdultDirectory interface {
	ListAdultsByAccount(ctx context.Context, accountID id.AccountID) ([]registry.Adult, error)
}

// Service implements login and long-lived credential validation.
type Service struct {
	accounts AccountStore
	adults   AdultDirectory
	tokens   *TokenService
	// index is an optional membership cache; nil means every remembered
	// validation reads the account row.
	index   RememberedIndex
	sink    audit.Sink
	metrics *metrics.Metrics
	logger  *slog.Logger

	// rememberedCap bounds the per-account remembered set; oldest evicted.
	rememberedCap int
}

func NewService(
	accounts AccountStore,
	adults AdultDirectory,
	tokens *TokenService,
	index RememberedIndex,
	sink audit.Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
	rememberedCap int,
) *Service {
	return &Service{
		accounts:      accounts,
		adults:        adults,
		tokens:        tokens,
		index:         index,
		sink:          sink,
		metrics:       m,
		logger:        logger,
		rememberedCap: rememberedCap,
	}
}

// errBadCredentials is the single message for every credential failure so the
// response never reveals whether the username exists.
var errBadCredentials = func() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
}

// Login authenticates and issues credentials. Either every requested
// credential is issued and persisted, or none is.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.Username == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "username and password are required")
	}

	account, err := s.accounts.FindAccountByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.loginFailed(ctx)
			return nil, errBadCredentials()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		s.loginFailed(ctx)
		return nil, errBadCredentials()
	}

	now := requestcontext.Now(ctx)

	accessToken, err := s.tokens.IssueAccess(account.ID, account.Role, account.Phone, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}

	result := &LoginResult{
		AccessToken: accessToken,
		Role:        account.Role.String(),
		AccountID:   account.ID.String(),
	}

	// First owned adult bootstraps the dashboard without a second round trip.
	// Read it before persisting anything so a failed login leaves no
	// remembered digest behind.
	adults, err := s.adults.ListAdultsByAccount(ctx, account.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list adults")
	}
	if len(adults) > 0 {
		result.AdultID = adults[0].ID.String()
	}

	if req.RememberDevice {
		rememberedToken, err := s.tokens.IssueRemembered(account.ID, account.Role, account.Phone, now)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue remembered token")
		}
		digest := Digest(rememberedToken)

		// Persist-before-return: a token the store does not know about would
		// be unrevocable.
		evicted, err := s.accounts.AppendRememberedToken(ctx, account.ID, digest, s.rememberedCap)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist remembered token")
		}
		if evicted > 0 && s.metrics != nil {
			s.metrics.RememberedTokensEvicted.Add(float64(evicted))
		}

		if s.index != nil {
			if err := s.index.Add(ctx, account.ID.String(), digest); err != nil {
				// Cache only; the store remains authoritative.
				s.logger.WarnContext(ctx, "remembered index add failed", "error", err)
			}
		}

		result.RememberedToken = rememberedToken
		s.emit(ctx, audit.Event{
			Kind:      audit.EventDeviceRemembered,
			AccountID: account.ID.String(),
			Attrs: map[string]string{
				"device": DeviceDisplayName(requestcontext.UserAgent(ctx)),
				"ip":     requestcontext.ClientIP(ctx),
			},
		})
	}

	if s.metrics != nil {
		s.metrics.ObserveLogin(true)
	}
	s.emit(ctx, audit.Event{
		Kind:      audit.EventLogin,
		AccountID: account.ID.String(),
		Attrs: map[string]string{
			"device": DeviceDisplayName(requestcontext.UserAgent(ctx)),
			"ip":     requestcontext.ClientIP(ctx),
		},
	})
	s.logger.InfoContext(ctx, "login succeeded",
		"account_id", account.ID.String(),
		"remember_device", req.RememberDevice,
		"request_id", requestcontext.RequestID(ctx),
	)

	return result, nil
}

// ValidateRemembered checks a long-lived token: signature and expiry first,
// then set membership, since signature validity alone does not reflect
// revocation.
func (s *Service) ValidateRemembered(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.tokens.VerifyRememberedSignature(tokenString)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(claims.AccountID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	digest := Digest(tokenString)

	if s.index != nil {
		ok, err := s.index.Contains(ctx, accountID.String(), digest)
		if err != nil {
			s.logger.WarnContext(ctx, "remembered index lookup failed", "error", err)
		} else if ok {
			return claims, nil
		}
		// A cold or evicted cache entry falls through to the store.
	}

	account, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}
	if !slices.Contains(account.RememberedTokens, digest) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if s.index != nil {
		if err := s.index.Add(ctx, accountID.String(), digest); err != nil {
			s.logger.WarnContext(ctx, "remembered index repopulate failed", "error", err)
		}
	}
	return claims, nil
}

// ForgetDevice revokes one remembered device by removing its digest from the
// account's set. The presented token must belong to the calling account.
func (s *Service) ForgetDevice(ctx context.Context, accountID id.AccountID, rememberedToken string) error {
	claims, err := s.tokens.VerifyRememberedSignature(rememberedToken)
	if err != nil {
		return err
	}
	if claims.AccountID != accountID.String() {
		return dErrors.New(dErrors.CodeForbidden, "forbidden")
	}

	digest := Digest(rememberedToken)
	if err := s.accounts.RemoveRememberedToken(ctx, accountID, digest); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove remembered token")
	}
	if s.index != nil {
		if err := s.index.Remove(ctx, accountID.String(), digest); err != nil {
			s.logger.WarnContext(ctx, "remembered index remove failed", "error", err)
		}
	}

	s.emit(ctx, audit.Event{
		Kind:      audit.EventDeviceForgotten,
		AccountID: accountID.String(),
	})
	return nil
}

func (s *Service) loginFailed(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.ObserveLogin(false)
	}
	s.emit(ctx, audit.Event{
		Kind:  audit.EventLoginFailed,
		Attrs: map[string]string{"ip": requestcontext.ClientIP(ctx)},
	})
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"error", err,
			"kind", string(event.Kind),
		)
	}
}
