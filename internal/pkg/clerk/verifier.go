package clerk

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Rejection reasons for session token verification. Each verification step
// fails with exactly one of these; any failure short-circuits the rest.
var (
	ErrMalformedToken = errors.New("invalid token format")
	ErrMissingKeyID   = errors.New("token header is missing kid")
	ErrUnknownKey     = errors.New("token signed by unknown key")
	ErrBadSignature   = errors.New("token signature verification failed")
	ErrIssuerMismatch = errors.New("token issuer mismatch")
	ErrTokenExpired   = errors.New("token expired or not yet valid")
)

// ClockSkewTolerance is applied to exp and nbf claims.
const ClockSkewTolerance = 60 * time.Second

var allowedSigningMethods = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}

// Verifier validates Clerk session tokens against the cached provider keys.
// A successful verification yields the token's subject claim, the external
// user id everything downstream is keyed by.
type Verifier struct {
	keys   *KeyCache
	issuer string
	now    func() time.Time
}

// NewVerifier creates a verifier bound to the configured issuer.
func NewVerifier(keys *KeyCache, issuer string) *Verifier {
	return &Verifier{
		keys:   keys,
		issuer: issuer,
		now:    time.Now,
	}
}

// Verify checks a bearer token and returns its subject identifier.
// Steps run in a fixed order: format, kid, key resolution, signature,
// issuer, time claims. The first failing step decides the rejection reason.
func (v *Verifier) Verify(ctx context.Context, token string) (string, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return "", ErrMalformedToken
	}

	kid, err := headerKeyID(segments[0])
	if err != nil {
		return "", err
	}

	key, err := v.keys.PublicKey(ctx, kid)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return "", ErrUnknownKey
		}
		// Fetch failures surface as an authentication error to the caller;
		// the middleware logs the underlying detail.
		return "", err
	}

	// Claims validation is disabled here so issuer and expiry checks run in
	// the documented order with distinct rejection reasons.
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithoutClaimsValidation(),
		jwt.WithValidMethods(allowedSigningMethods),
	)
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}); err != nil {
		return "", ErrBadSignature
	}

	issuer, err := claims.GetIssuer()
	if err != nil || issuer != v.issuer {
		return "", ErrIssuerMismatch
	}

	now := v.now()
	if exp, err := claims.GetExpirationTime(); err != nil {
		return "", ErrTokenExpired
	} else if exp != nil && now.After(exp.Add(ClockSkewTolerance)) {
		return "", ErrTokenExpired
	}
	if nbf, err := claims.GetNotBefore(); err != nil {
		return "", ErrTokenExpired
	} else if nbf != nil && now.Add(ClockSkewTolerance).Before(nbf.Time) {
		return "", ErrTokenExpired
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrMalformedToken
	}
	return subject, nil
}

func headerKeyID(segment string) (string, error) {
	headerJSON, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return "", ErrMissingKeyID
	}
	var header struct {
		Kid string `json:"kid"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return "", ErrMissingKeyID
	}
	if header.Kid == "" {
		return "", ErrMissingKeyID
	}
	return header.Kid, nil
}
