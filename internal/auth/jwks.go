package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

// keySet caches the identity provider's published signing keys, keyed by
// key id (kid). Keys are refreshed when the cache is stale or when a token
// presents an unknown kid — that is how key rotation is tolerated without a
// push channel from the provider.
//
// The cache is read-shared across requests. Concurrent refreshes of the
// same set may race; last writer wins, which is safe because every fetch
// returns the provider's current key set.
type keySet struct {
	url    string
	client *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	ttl       time.Duration
}

const defaultKeyTTL = 6 * time.Hour

func newKeySet(url string, client *http.Client) *keySet {
	return &keySet{
		url:    url,
		client: client,
		keys:   map[string]*rsa.PublicKey{},
		ttl:    defaultKeyTTL,
	}
}

// get returns the public key for kid, fetching the key set if the kid is
// unknown or the cache has expired. If a refresh fails but a cached key for
// kid exists, the cached key is used — a transient network failure must not
// reject tokens signed with a key we already trust.
func (s *keySet) get(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	key := s.keys[kid]
	stale := time.Since(s.fetchedAt) > s.ttl
	s.mu.RUnlock()

	if key != nil && !stale {
		return key, nil
	}

	if err := s.refresh(ctx); err != nil {
		s.mu.RLock()
		key = s.keys[kid]
		s.mu.RUnlock()
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	key = s.keys[kid]
	if key == nil {
		return nil, fmt.Errorf("kid not found in key set: %s", kid)
	}
	return key, nil
}

// jwk is the subset of RFC 7517 we need: RSA public keys only, which is
// what the identity provider signs with (RS256).
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

func (s *keySet) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("building key set request: %w", err)
	}
	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching key set: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("key set fetch failed: %s", res.Status)
	}

	var set jwkSet
	if err := json.NewDecoder(res.Body).Decode(&set); err != nil {
		return fmt.Errorf("decoding key set: %w", err)
	}

	next := map[string]*rsa.PublicKey{}
	for _, k := range set.Keys {
		if k.Kty != "RSA" || strings.TrimSpace(k.Kid) == "" {
			continue
		}
		pub, err := rsaFromModExp(k.N, k.E)
		if err != nil {
			continue // skip malformed entries, keep the usable ones
		}
		next[k.Kid] = pub
	}
	if len(next) == 0 {
		return errors.New("key set contained no usable keys")
	}

	s.mu.Lock()
	s.keys = next
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// rsaFromModExp builds an *rsa.PublicKey from the base64url-encoded modulus
// and exponent of a JWK entry.
func rsaFromModExp(nB64, eB64 string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}

	e := 0
	for _, b := range eb {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, errors.New("invalid exponent")
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
