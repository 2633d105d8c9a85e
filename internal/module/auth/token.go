package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the shortest HS256 signing secret accepted.
const MinSecretLength = 32

var errInvalidToken = errors.New("invalid token")

// TokenIssuer signs and verifies HS256 staff tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. The secret must be at least
// MinSecretLength bytes and expiry must be positive.
func NewTokenIssuer(secret, issuer string, expiry time.Duration) (*TokenIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if expiry <= 0 {
		return nil, errors.New("token expiry must be positive")
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, expiry: expiry, now: time.Now}, nil
}

// Issue returns a signed token for staffID and its expiry time.
func (t *TokenIssuer) Issue(staffID uint) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.expiry)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    t.issuer,
		Subject:   strconv.FormatUint(uint64(staffID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies token and returns the staff id in its subject.
func (t *TokenIssuer) Parse(token string) (uint, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errInvalidToken, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", errInvalidToken, claims.Subject)
	}
	return uint(id), nil
}
