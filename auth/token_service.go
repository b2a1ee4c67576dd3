package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenService issues and validates the signed, expiring bearer tokens.
// The token string is opaque to holders; only a service holding the same
// signing key can decode it.
type TokenService struct {
	secrets *Secrets
	logger  Logger
	now     func() time.Time
}

// NewTokenService creates a TokenService bound to the immutable secrets
// snapshot.
func NewTokenService(secrets *Secrets) *TokenService {
	return &TokenService{
		secrets: secrets,
		logger:  defLogger{},
		now:     time.Now,
	}
}

// WithLogger overrides the logger.
func (ts *TokenService) WithLogger(logger Logger) *TokenService {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

// WithClock injects a custom clock (useful for tests).
func (ts *TokenService) WithClock(clock func() time.Time) *TokenService {
	if clock != nil {
		ts.now = clock
	}
	return ts
}

// Issue signs a token for the account with the given privilege snapshot.
// Expiry is now plus the configured lifetime.
func (ts *TokenService) Issue(accountID primitive.ObjectID, privilegeLevel int) (string, error) {
	now := ts.now()
	claims := &AccountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.secrets.TokenTTL())),
		},
		PrivilegeLevel: privilegeLevel,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.secrets.SigningKey())
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token").
			WithCode(goerrors.CodeInternal)
	}

	return signed, nil
}

// Validate verifies the signature before trusting any claim, then checks
// expiry. The three failure modes stay distinguishable for status mapping:
// malformed and tampered tokens map to bad requests, expired ones to
// forbidden. A subject that does not parse as an account identifier is a
// malformed token, not a missing account.
func (ts *TokenService) Validate(raw string) (*AccountClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &AccountClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.secrets.SigningKey(), nil
	}, jwt.WithTimeFunc(ts.now))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenBadSignature
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(*AccountClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token validate could not decode claims")
		return nil, ErrTokenMalformed
	}

	if _, err := claims.AccountID(); err != nil {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
