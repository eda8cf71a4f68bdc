package clerk

import (
	"context"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testIssuer = "https://clerk.example.com"

func mintToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func newTestVerifier(t *testing.T, key *rsa.PrivateKey, kid string) *Verifier {
	t.Helper()
	cache := NewKeyCache(func(ctx context.Context) ([]byte, error) {
		return jwksFor(t, kid, &key.PublicKey), nil
	})
	return NewVerifier(cache, testIssuer)
}

func baseClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": "user_2abc",
		"iss": testIssuer,
		"exp": now.Add(time.Minute).Unix(),
		"nbf": now.Add(-time.Minute).Unix(),
	}
}

func TestVerifyValidToken(t *testing.T) {
	key := generateTestKey(t)
	v := newTestVerifier(t, key, "kid_1")

	token := mintToken(t, key, "kid_1", baseClaims(time.Now()))
	subject, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "user_2abc" {
		t.Fatalf("expected subject user_2abc, got %q", subject)
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	key := generateTestKey(t)
	v := newTestVerifier(t, key, "kid_1")

	for _, token := range []string{"", "abc", "a.b", "a.b.c.d"} {
		if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("Verify(%q): expected ErrMalformedToken, got %v", token, err)
		}
	}
}

func TestVerifyMissingKeyID(t *testing.T) {
	key := generateTestKey(t)
	v := newTestVerifier(t, key, "kid_1")

	token := mintToken(t, key, "", baseClaims(time.Now()))
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrMissingKeyID) {
		t.Fatalf("expected ErrMissingKeyID, got %v", err)
	}
}

func TestVerifyUnknownKey(t *testing.T) {
	key := generateTestKey(t)
	// The provider key set only ever contains kid_1; tokens referencing any
	// other kid must fail even after the refresh attempt.
	v := newTestVerifier(t, key, "kid_1")

	token := mintToken(t, key, "kid_2", baseClaims(time.Now()))
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
}

func TestVerifyBadSignature(t *testing.T) {
	key := generateTestKey(t)
	impostor := generateTestKey(t)
	v := newTestVerifier(t, key, "kid_1")

	// Signed by a different key but claiming the trusted kid.
	token := mintToken(t, impostor, "kid_1", baseClaims(time.Now()))
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
}

func TestVerifyIssuerMismatch(t *testing.T) {
	key := generateTestKey(t)
	v := newTestVerifier(t, key, "kid_1")

	claims := baseClaims(time.Now())
	claims["iss"] = "https://evil.example.com"
	token := mintToken(t, key, "kid_1", claims)

	// Signature is valid; the issuer check must still reject.
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrIssuerMismatch) {
		t.Fatalf("expected ErrIssuerMismatch, got %v", err)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	key := generateTestKey(t)
	v := newTestVerifier(t, key, "kid_1")

	issued := time.Now()
	claims := baseClaims(issued)
	expiry := issued.Add(time.Minute)
	claims["exp"] = expiry.Unix()
	token := mintToken(t, key, "kid_1", claims)

	// 59s past expiry is inside the 60s skew tolerance.
	v.now = func() time.Time { return expiry.Add(59 * time.Second) }
	if _, err := v.Verify(context.Background(), token); err != nil {
		t.Fatalf("expected token to be accepted at expiry+59s, got %v", err)
	}

	// 61s past expiry is outside it.
	v.now = func() time.Time { return expiry.Add(61 * time.Second) }
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at expiry+61s, got %v", err)
	}
}

func TestVerifyNotBeforeWithSkew(t *testing.T) {
	key := generateTestKey(t)
	v := newTestVerifier(t, key, "kid_1")

	now := time.Now()
	claims := baseClaims(now)
	claims["nbf"] = now.Add(30 * time.Second).Unix()
	claims["exp"] = now.Add(time.Hour).Unix()
	token := mintToken(t, key, "kid_1", claims)

	// 30s early is within the 60s tolerance.
	if _, err := v.Verify(context.Background(), token); err != nil {
		t.Fatalf("expected nbf within skew to be accepted, got %v", err)
	}

	claims["nbf"] = now.Add(5 * time.Minute).Unix()
	token = mintToken(t, key, "kid_1", claims)
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired for far-future nbf, got %v", err)
	}
}

func TestVerifyFetchFailureSurfacesAsError(t *testing.T) {
	key := generateTestKey(t)
	cache := NewKeyCache(func(ctx context.Context) ([]byte, error) {
		return nil, errors.New("provider down")
	})
	v := NewVerifier(cache, testIssuer)

	token := mintToken(t, key, "kid_1", baseClaims(time.Now()))
	_, err := v.Verify(context.Background(), token)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError to propagate, got %v", err)
	}
}
