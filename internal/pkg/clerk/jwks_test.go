package clerk

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating rsa key: %v", err)
	}
	return key
}

func jwksFor(t *testing.T, kid string, pub *rsa.PublicKey) []byte {
	t.Helper()
	doc := map[string]interface{}{
		"keys": []map[string]string{
			{
				"kid": kid,
				"kty": "RSA",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   "AQAB",
			},
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshaling jwks: %v", err)
	}
	return raw
}

func TestKeyCachePopulatesOnFirstUse(t *testing.T) {
	key := generateTestKey(t)
	fetches := 0
	cache := NewKeyCache(func(ctx context.Context) ([]byte, error) {
		fetches++
		return jwksFor(t, "kid_1", &key.PublicKey), nil
	})

	got, err := cache.PublicKey(context.Background(), "kid_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pub, ok := got.(*rsa.PublicKey)
	if !ok {
		t.Fatalf("expected *rsa.PublicKey, got %T", got)
	}
	if pub.N.Cmp(key.PublicKey.N) != 0 || pub.E != key.PublicKey.E {
		t.Fatalf("parsed key does not match source key")
	}

	// Second lookup must be served from the cache.
	if _, err := cache.PublicKey(context.Background(), "kid_1"); err != nil {
		t.Fatalf("unexpected error on cached lookup: %v", err)
	}
	if fetches != 1 {
		t.Fatalf("expected exactly 1 fetch, got %d", fetches)
	}
}

func TestKeyCacheUnknownKidAfterRefresh(t *testing.T) {
	key := generateTestKey(t)
	cache := NewKeyCache(func(ctx context.Context) ([]byte, error) {
		return jwksFor(t, "kid_1", &key.PublicKey), nil
	})

	_, err := cache.PublicKey(context.Background(), "kid_rotated_away")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestKeyCacheFetchFailure(t *testing.T) {
	cache := NewKeyCache(func(ctx context.Context) ([]byte, error) {
		return nil, fmt.Errorf("connection refused")
	})

	_, err := cache.PublicKey(context.Background(), "kid_1")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("fetch failure must not look like a missing key")
	}
}

func TestKeyCacheMalformedKeySet(t *testing.T) {
	cache := NewKeyCache(func(ctx context.Context) ([]byte, error) {
		return []byte(`{"keys": "not-an-array"`), nil
	})

	_, err := cache.PublicKey(context.Background(), "kid_1")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError for malformed jwks, got %v", err)
	}
}

func TestKeyCacheConcurrentFirstUse(t *testing.T) {
	key := generateTestKey(t)
	cache := NewKeyCache(func(ctx context.Context) ([]byte, error) {
		return jwksFor(t, "kid_1", &key.PublicKey), nil
	})

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.PublicKey(context.Background(), "kid_1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent lookup failed: %v", err)
		}
	}
}
