package carrier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SafetyMargin is how much remaining lifetime a token must have before it is
// handed to a caller. Tokens inside the margin are replaced, never reused.
const SafetyMargin = 60 * time.Second

type Carrier string

const (
	CarrierFedEx Carrier = "fedex"
	CarrierEstes Carrier = "estes"
)

var ErrUnknownCarrier = errors.New("carrier is not registered with the token cache")

// Token is an immutable bearer token snapshot. ExpiresAt is the wallclock
// expiry reported by the carrier, before the safety margin is applied.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// AcquireFunc performs the carrier's grant and returns a fresh token.
type AcquireFunc func(ctx context.Context) (Token, error)

type tokenEntry struct {
	mu      sync.Mutex
	token   Token
	acquire AcquireFunc
}

// TokenCache hands out valid bearer tokens per carrier. At most one refresh
// is in flight per carrier; callers queue on the entry lock while it runs.
type TokenCache struct {
	entries map[Carrier]*tokenEntry
	now     func() time.Time
	logger  *zap.Logger
}

func NewTokenCache(logger *zap.Logger) *TokenCache {
	return &TokenCache{
		entries: make(map[Carrier]*tokenEntry),
		now:     time.Now,
		logger:  logger.Named("tokens"),
	}
}

// Register wires a carrier's grant. Registration happens once at startup,
// before any Get.
func (c *TokenCache) Register(carrier Carrier, acquire AcquireFunc) {
	c.entries[carrier] = &tokenEntry{acquire: acquire}
}

// Get returns a token with at least SafetyMargin of lifetime left,
// refreshing first when the cached one is too close to expiry.
func (c *TokenCache) Get(ctx context.Context, carrier Carrier) (string, error) {
	entry, ok := c.entries[carrier]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCarrier, carrier)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.token.Value != "" && c.now().Add(SafetyMargin).Before(entry.token.ExpiresAt) {
		return entry.token.Value, nil
	}

	token, err := entry.acquire(ctx)
	if err != nil {
		// The stale entry stays unusable; the next caller retries the grant.
		return "", err
	}
	c.logger.Debug("bearer token refreshed",
		zap.String("carrier", string(carrier)),
		zap.Time("expires_at", token.ExpiresAt),
	)
	entry.token = token
	return token.Value, nil
}

// Invalidate drops the cached token so the next Get performs a fresh grant.
// Used when a carrier rejects a token the cache still considered valid.
func (c *TokenCache) Invalidate(carrier Carrier) {
	entry, ok := c.entries[carrier]
	if !ok {
		return
	}
	entry.mu.Lock()
	entry.token = Token{}
	entry.mu.Unlock()
}
