// Package jwttoken issues and validates the bearer tokens that carry an
// already-authenticated caller identity (an account address) into the
// ledger. Signature verification of ledger operations themselves is out of
// scope; this is transport-level identity only.
package jwttoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tokengate/internal/platform/middleware"
	"tokengate/pkg/domain"
	dErrors "tokengate/pkg/domain-errors"
)

const issuer = "tokengate"

// CallerClaims are the JWT claims for ledger access tokens. The subject is
// the caller's canonical account address.
type CallerClaims struct {
	jwt.RegisteredClaims
}

// Manager signs and validates caller tokens with an HS256 shared key.
type Manager struct {
	signingKey []byte
	tokenTTL   time.Duration
}

// NewManager constructs a token manager.
func NewManager(signingKey string, tokenTTL time.Duration) (*Manager, error) {
	if signingKey == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "signing key required")
	}
	if tokenTTL <= 0 {
		tokenTTL = 15 * time.Minute
	}
	return &Manager{signingKey: []byte(signingKey), tokenTTL: tokenTTL}, nil
}

// Issue creates a signed token whose subject is the given account.
func (m *Manager) Issue(account domain.Address) (string, error) {
	if account.IsZero() {
		return "", dErrors.New(dErrors.CodeInvalidAddress, "cannot issue token for the zero address")
	}
	now := time.Now()
	claims := CallerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   account.String(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning the caller identity
// for the auth middleware.
func (m *Manager) ValidateToken(tokenString string) (*middleware.CallerClaims, error) {
	var claims CallerClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.signingKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}
	if !token.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	account, err := domain.ParseAddress(claims.Subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token subject is not an account address")
	}
	return &middleware.CallerClaims{
		Account: account,
		JTI:     claims.ID,
	}, nil
}
