package carrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetRefreshesOnFirstUse(t *testing.T) {
	cache := NewTokenCache(zap.NewNop())
	grants := 0
	cache.Register(CarrierFedEx, func(ctx context.Context) (Token, error) {
		grants++
		return Token{Value: "t1", ExpiresAt: time.Now().Add(time.Hour)}, nil
	})

	token, err := cache.Get(context.Background(), CarrierFedEx)
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
	assert.Equal(t, 1, grants)

	// Second call reuses the cached token.
	token, err = cache.Get(context.Background(), CarrierFedEx)
	require.NoError(t, err)
	assert.Equal(t, "t1", token)
	assert.Equal(t, 1, grants)
}

func TestGetRespectsSafetyMargin(t *testing.T) {
	cache := NewTokenCache(zap.NewNop())
	now := time.Unix(1700000000, 0)
	cache.now = func() time.Time { return now }

	expiries := []time.Time{
		now.Add(30 * time.Second), // inside the margin, unusable
		now.Add(2 * time.Hour),
	}
	grants := 0
	cache.Register(CarrierFedEx, func(ctx context.Context) (Token, error) {
		token := Token{Value: "t", ExpiresAt: expiries[grants]}
		grants++
		return token, nil
	})

	// First grant lands inside the safety margin, so the next Get refreshes
	// again instead of handing it out twice.
	_, err := cache.Get(context.Background(), CarrierFedEx)
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), CarrierFedEx)
	require.NoError(t, err)
	assert.Equal(t, 2, grants)
}

func TestReplacementIncreasesExpiry(t *testing.T) {
	cache := NewTokenCache(zap.NewNop())
	now := time.Unix(1700000000, 0)
	cache.now = func() time.Time { return now }

	sequence := []Token{
		{Value: "old", ExpiresAt: now.Add(90 * time.Second)},
		{Value: "new", ExpiresAt: now.Add(time.Hour)},
	}
	grants := 0
	cache.Register(CarrierEstes, func(ctx context.Context) (Token, error) {
		token := sequence[grants]
		grants++
		return token, nil
	})

	first, err := cache.Get(context.Background(), CarrierEstes)
	require.NoError(t, err)
	assert.Equal(t, "old", first)

	// Advance to within the margin of the old expiry; the replacement must
	// be the later-expiring token, never the old one again.
	now = now.Add(45 * time.Second)
	second, err := cache.Get(context.Background(), CarrierEstes)
	require.NoError(t, err)
	assert.Equal(t, "new", second)
	assert.True(t, sequence[1].ExpiresAt.After(sequence[0].ExpiresAt))
}

func TestFailedGrantDoesNotReturnStaleToken(t *testing.T) {
	cache := NewTokenCache(zap.NewNop())
	now := time.Unix(1700000000, 0)
	cache.now = func() time.Time { return now }

	grantErr := errors.New("grant refused")
	grants := 0
	cache.Register(CarrierFedEx, func(ctx context.Context) (Token, error) {
		grants++
		if grants == 1 {
			return Token{Value: "t1", ExpiresAt: now.Add(90 * time.Second)}, nil
		}
		return Token{}, grantErr
	})

	_, err := cache.Get(context.Background(), CarrierFedEx)
	require.NoError(t, err)

	now = now.Add(60 * time.Second) // token now inside the margin
	_, err = cache.Get(context.Background(), CarrierFedEx)
	assert.ErrorIs(t, err, grantErr)

	// Repeated failures keep failing; the expired entry never resurfaces.
	_, err = cache.Get(context.Background(), CarrierFedEx)
	assert.ErrorIs(t, err, grantErr)
}

func TestInvalidateForcesFreshGrant(t *testing.T) {
	cache := NewTokenCache(zap.NewNop())
	grants := 0
	cache.Register(CarrierFedEx, func(ctx context.Context) (Token, error) {
		grants++
		return Token{Value: "t", ExpiresAt: time.Now().Add(time.Hour)}, nil
	})

	_, err := cache.Get(context.Background(), CarrierFedEx)
	require.NoError(t, err)
	cache.Invalidate(CarrierFedEx)
	_, err = cache.Get(context.Background(), CarrierFedEx)
	require.NoError(t, err)
	assert.Equal(t, 2, grants)
}

func TestUnknownCarrier(t *testing.T) {
	cache := NewTokenCache(zap.NewNop())
	_, err := cache.Get(context.Background(), Carrier("ups"))
	assert.ErrorIs(t, err, ErrUnknownCarrier)
}
