package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/treyhulse/kcsf-ops/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func estesConfig(baseURL string) config.Config {
	return config.Config{
		EstesAPIKey:   "api-key",
		EstesUsername: "user",
		EstesPassword: "pass",
		EstesBaseURL:  baseURL,
		Timeout:       5 * time.Second,
	}
}

func TestSubmitClaimAuthenticatesAndPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		assert.Equal(t, "api-key", r.Header.Get("apikey"))
		switch r.URL.Path {
		case "/authenticate":
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "user", user)
			assert.Equal(t, "pass", pass)
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "est-tok", "expires_in": 1800})
		case "/v1/claims":
			assert.Equal(t, "Bearer est-tok", r.Header.Get("Authorization"))
			var claim map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&claim))
			assert.Equal(t, "123-456789", claim["proNumber"])
			_ = json.NewEncoder(w).Encode(map[string]any{"claimNumber": "CLM-1"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	estes, err := NewEstes(estesConfig(server.URL), NewTokenCache(zap.NewNop()), zap.NewNop())
	require.NoError(t, err)

	ack, err := estes.SubmitClaim(context.Background(), Claim{
		ProNumber:    "123-456789",
		ClaimantName: "KC Store Fixtures",
		ClaimType:    "damage",
		Amount:       decimal.NewFromFloat(412.50),
	})
	require.NoError(t, err)
	assert.Equal(t, "CLM-1", ack["claimNumber"])
}

func TestTrackClaimSurfacesNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/authenticate" {
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "est-tok", "expires_in": 1800})
			return
		}
		http.Error(w, `{"message":"claim not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	estes, err := NewEstes(estesConfig(server.URL), NewTokenCache(zap.NewNop()), zap.NewNop())
	require.NoError(t, err)

	_, err = estes.TrackClaim(context.Background(), "CLM-404")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CarrierEstes, apiErr.Carrier)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestMissingEstesCredentials(t *testing.T) {
	_, err := NewEstes(config.Config{}, NewTokenCache(zap.NewNop()), zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingEstesCredentials)
}
