package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
)

// TokenService creates and validates both token lifetimes. The two signing
// keys are independent: compromise of one credential type must not let an
// attacker forge the other.
type TokenService struct {
	accessKey     []byte
	rememberedKey []byte
	issuer        string
	accessTTL     time.Duration
	rememberedTTL time.Duration
}

func NewTokenService(accessSecret, rememberedSecret string, accessTTL, rememberedTTL time.Duration) *TokenService {
	return &TokenService{
		accessKey:     []byte(accessSecret),
		rememberedKey: []byte(rememberedSecret),
		issuer:        "carelink",
		accessTTL:     accessTTL,
		rememberedTTL: rememberedTTL,
	}
}

// IssueAccess signs the short-lived credential.
func (s *TokenService) IssueAccess(accountID id.AccountID, role id.Role, phone string, now time.Time) (string, error) {
	return s.sign(s.accessKey, accountID, role, phone, now, s.accessTTL)
}

// IssueRemembered signs the long-lived credential. Validity of the result
// additionally requires set membership (see Service.ValidateRemembered).
func (s *TokenService) IssueRemembered(accountID id.AccountID, role id.Role, phone string, now time.Time) (string, error) {
	return s.sign(s.rememberedKey, accountID, role, phone, now, s.rememberedTTL)
}

func (s *TokenService) sign(key []byte, accountID id.AccountID, role id.Role, phone string, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AccountID: accountID.String(),
		Role:      role.String(),
		Phone:     phone,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(key)
}

// ValidateAccess checks signature and expiry of a short-lived token.
func (s *TokenService) ValidateAccess(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.accessKey)
}

// VerifyRememberedSignature checks signature and expiry of a long-lived
// token. Signature validity alone does not make the token live: revocation is
// set membership, checked by the service.
func (s *TokenService) VerifyRememberedSignature(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.rememberedKey)
}

func (s *TokenService) validate(tokenString string, key []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Digest returns the SHA-256 hex digest under which a remembered token is
// stored. Only digests are persisted, never raw tokens.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
