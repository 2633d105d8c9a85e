package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewTokenIssuer_Validation(t *testing.T) {
	if _, err := NewTokenIssuer("short", "", time.Hour); err == nil {
		t.Error("expected error for short secret")
	}
	if _, err := NewTokenIssuer(testSecret, "", 0); err == nil {
		t.Error("expected error for zero expiry")
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	tokens := newIssuer(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	signed, exp, err := tokens.Issue(5)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.Equal(now.Add(time.Hour)) {
		t.Errorf("expiry = %v; want %v", exp, now.Add(time.Hour))
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(signed, &claims); err != nil {
		t.Fatalf("parse unverified: %v", err)
	}
	if claims.ID == "" {
		t.Error("expected a jti claim")
	}
	if claims.Subject != "5" || claims.Issuer != "myproject" {
		t.Errorf("unexpected claims: sub=%q iss=%q", claims.Subject, claims.Issuer)
	}

	id, err := tokens.Parse(signed)
	if err != nil || id != 5 {
		t.Fatalf("Parse = %d, %v; want 5, nil", id, err)
	}

	second, _, _ := tokens.Issue(5)
	if second == signed {
		t.Error("expected a fresh jti per token")
	}
}

func TestTokenIssuer_Rejects(t *testing.T) {
	tokens := newIssuer(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }
	valid, _, _ := tokens.Issue(5)

	other, _ := NewTokenIssuer(strings.Repeat("x", 32), "myproject", time.Hour)
	other.now = tokens.now
	foreign, _, _ := other.Issue(5)

	wrongIssuer, _ := NewTokenIssuer(testSecret, "someone-else", time.Hour)
	wrongIssuer.now = tokens.now
	otherIss, _, _ := wrongIssuer.Issue(5)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "5", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		at    time.Time
	}{
		{"expired", valid, now.Add(2 * time.Hour)},
		{"wrong secret", foreign, now},
		{"wrong issuer", otherIss, now},
		{"alg none", unsigned, now},
		{"malformed", "a.b.c", now},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			tokens.now = func() time.Time { return at }
			_, err := tokens.Parse(tt.token)
			if !errors.Is(err, errInvalidToken) {
				t.Errorf("expected invalid token error, got %v", err)
			}
		})
	}
}
