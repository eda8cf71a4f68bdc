package clerk

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrKeyNotFound is returned when a kid is absent from the key set even
// after a refresh. It is terminal: callers must not retry the lookup.
var ErrKeyNotFound = errors.New("signing key not found in provider key set")

// FetchError wraps a failed key-set fetch (network error, bad status,
// malformed JWKS). Distinct from ErrKeyNotFound so callers can tell a
// provider outage from a genuinely unknown key.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("jwks fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchFunc retrieves the raw JWKS document from the identity provider.
type FetchFunc func(ctx context.Context) ([]byte, error)

const jwksFetchTimeout = 10 * time.Second

// KeyCache holds the identity provider's public signing keys keyed by kid.
// Keys are populated on first use and kept for the process lifetime; an
// unknown kid triggers exactly one refresh before failing. The fetch
// function is injected so tests construct the cache with a fake provider.
type KeyCache struct {
	fetch FetchFunc

	mu   sync.RWMutex
	keys map[string]interface{}

	// Serializes refreshes without blocking readers. Duplicate concurrent
	// fetches would be harmless (the key set is idempotent data), this just
	// keeps at most one network call in flight.
	refreshMu sync.Mutex
}

// NewKeyCache creates a key cache with an injected fetch function.
func NewKeyCache(fetch FetchFunc) *KeyCache {
	return &KeyCache{
		fetch: fetch,
		keys:  make(map[string]interface{}),
	}
}

// NewKeyCacheFromURL creates a key cache fetching from the provider's
// published JWKS endpoint with a bounded timeout.
func NewKeyCacheFromURL(jwksURL string) *KeyCache {
	client := &http.Client{Timeout: jwksFetchTimeout}
	return NewKeyCache(func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
		}
		return body, nil
	})
}

// PublicKey resolves a kid to its public key. On a cache miss the full key
// set is fetched once and the cache repopulated; a miss after that refresh
// is ErrKeyNotFound.
func (c *KeyCache) PublicKey(ctx context.Context, kid string) (interface{}, error) {
	if key := c.lookup(kid); key != nil {
		return key, nil
	}
	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	if key := c.lookup(kid); key != nil {
		return key, nil
	}
	return nil, ErrKeyNotFound
}

func (c *KeyCache) lookup(kid string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.keys[kid]
}

func (c *KeyCache) refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	raw, err := c.fetch(ctx)
	if err != nil {
		return &FetchError{Err: err}
	}

	keys, err := parseKeySet(raw)
	if err != nil {
		return &FetchError{Err: err}
	}

	c.mu.Lock()
	c.keys = keys
	c.mu.Unlock()
	return nil
}

type jwkDocument struct {
	Keys []jwkEntry `json:"keys"`
}

type jwkEntry struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	N   string `json:"n"`
	E   string `json:"e"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

func parseKeySet(raw []byte) (map[string]interface{}, error) {
	var doc jwkDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing jwks json: %w", err)
	}
	if len(doc.Keys) == 0 {
		return nil, errors.New("jwks contained no keys")
	}

	out := make(map[string]interface{}, len(doc.Keys))
	for _, entry := range doc.Keys {
		if entry.Kid == "" || entry.Kty == "" {
			continue
		}
		key, err := entry.publicKey()
		if err != nil {
			return nil, err
		}
		out[entry.Kid] = key
	}
	return out, nil
}

func (e jwkEntry) publicKey() (interface{}, error) {
	switch e.Kty {
	case "RSA":
		return e.rsaKey()
	case "EC":
		return e.ecKey()
	default:
		return nil, fmt.Errorf("unsupported jwk kty %q", e.Kty)
	}
}

func (e jwkEntry) rsaKey() (interface{}, error) {
	if e.N == "" || e.E == "" {
		return nil, fmt.Errorf("invalid RSA jwk %q: missing n/e", e.Kid)
	}
	nBytes, err := decodeB64URL(e.N)
	if err != nil {
		return nil, fmt.Errorf("decoding rsa n: %w", err)
	}
	eBytes, err := decodeB64URL(e.E)
	if err != nil {
		return nil, fmt.Errorf("decoding rsa e: %w", err)
	}
	exp := 0
	for _, b := range eBytes {
		exp = exp<<8 + int(b)
	}
	if exp == 0 {
		return nil, fmt.Errorf("invalid rsa exponent in jwk %q", e.Kid)
	}
	n := new(big.Int).SetBytes(nBytes)
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("invalid rsa modulus in jwk %q", e.Kid)
	}
	return &rsa.PublicKey{N: n, E: exp}, nil
}

func (e jwkEntry) ecKey() (interface{}, error) {
	if e.Crv == "" || e.X == "" || e.Y == "" {
		return nil, fmt.Errorf("invalid EC jwk %q: missing crv/x/y", e.Kid)
	}
	xBytes, err := decodeB64URL(e.X)
	if err != nil {
		return nil, fmt.Errorf("decoding ec x: %w", err)
	}
	yBytes, err := decodeB64URL(e.Y)
	if err != nil {
		return nil, fmt.Errorf("decoding ec y: %w", err)
	}

	var curve elliptic.Curve
	switch e.Crv {
	case "P-256":
		curve = elliptic.P256()
	case "P-384":
		curve = elliptic.P384()
	case "P-521":
		curve = elliptic.P521()
	default:
		return nil, fmt.Errorf("unsupported ec curve %q", e.Crv)
	}

	x := new(big.Int).SetBytes(xBytes)
	y := new(big.Int).SetBytes(yBytes)
	if !curve.IsOnCurve(x, y) {
		return nil, fmt.Errorf("ec point not on curve in jwk %q", e.Kid)
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

func decodeB64URL(s string) ([]byte, error) {
	// JWK uses base64url without padding.
	return base64.RawURLEncoding.DecodeString(strings.TrimSpace(s))
}
