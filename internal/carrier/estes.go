package carrier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/treyhulse/kcsf-ops/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var ErrMissingEstesCredentials = errors.New("estes api key, username, and password are required")

// Estes handles LTL claim submission and tracking. Authentication is an API
// key plus a bearer token from the authenticate endpoint; the token rides the
// same cache and safety margin as FedEx.
type Estes struct {
	http   *resty.Client
	tokens *TokenCache
	logger *zap.Logger
}

func NewEstes(cfg config.Config, tokens *TokenCache, logger *zap.Logger) (*Estes, error) {
	if strings.TrimSpace(cfg.EstesAPIKey) == "" ||
		strings.TrimSpace(cfg.EstesUsername) == "" ||
		strings.TrimSpace(cfg.EstesPassword) == "" {
		return nil, ErrMissingEstesCredentials
	}

	httpClient := resty.New().
		SetBaseURL(cfg.EstesBaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("apikey", cfg.EstesAPIKey)

	e := &Estes{
		http:   httpClient,
		tokens: tokens,
		logger: logger.Named("estes"),
	}
	tokens.Register(CarrierEstes, e.acquireToken(cfg))
	return e, nil
}

func (e *Estes) acquireToken(cfg config.Config) AcquireFunc {
	return func(ctx context.Context) (Token, error) {
		var body tokenResponse
		resp, err := e.http.R().
			SetContext(ctx).
			SetBasicAuth(cfg.EstesUsername, cfg.EstesPassword).
			SetResult(&body).
			Post("/authenticate")
		if err != nil {
			return Token{}, fmt.Errorf("estes token request: %w", err)
		}
		if resp.IsError() {
			return Token{}, &APIError{
				Carrier:    CarrierEstes,
				StatusCode: resp.StatusCode(),
				Status:     resp.Status(),
				Body:       strings.TrimSpace(resp.String()),
			}
		}
		return Token{
			Value:     body.AccessToken,
			ExpiresAt: time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
		}, nil
	}
}

// SubmitClaim files a claim and returns the decoded acknowledgement.
func (e *Estes) SubmitClaim(ctx context.Context, claim Claim) (map[string]any, error) {
	var out map[string]any
	if err := e.do(ctx, http.MethodPost, "/v1/claims", claim, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TrackClaim fetches the current status of a filed claim.
func (e *Estes) TrackClaim(ctx context.Context, claimNumber string) (map[string]any, error) {
	var out map[string]any
	path := "/v1/claims/" + strings.TrimSpace(claimNumber)
	if err := e.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Estes) do(ctx context.Context, method, path string, body, result any) error {
	for attempt := 0; ; attempt++ {
		token, err := e.tokens.Get(ctx, CarrierEstes)
		if err != nil {
			return err
		}

		req := e.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetResult(result)
		if body != nil {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return fmt.Errorf("estes request: %w", err)
		}
		if resp.StatusCode() == http.StatusUnauthorized && attempt == 0 {
			e.logger.Warn("estes rejected a cached token, refreshing once")
			e.tokens.Invalidate(CarrierEstes)
			continue
		}
		if resp.IsError() {
			return &APIError{
				Carrier:    CarrierEstes,
				StatusCode: resp.StatusCode(),
				Status:     resp.Status(),
				Body:       strings.TrimSpace(resp.String()),
			}
		}
		return nil
	}
}
