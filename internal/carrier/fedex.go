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

var ErrMissingFedexCredentials = errors.New("fedex client id and secret are required")

// FedEx speaks the rate API under OAuth2 client credentials. Tokens come from
// the shared cache; a 401 on a rated call forces one refresh and one retry.
type FedEx struct {
	http          *resty.Client
	tokens        *TokenCache
	accountNumber string
	shipper       Address
	logger        *zap.Logger
}

func NewFedEx(cfg config.Config, tokens *TokenCache, logger *zap.Logger) (*FedEx, error) {
	if strings.TrimSpace(cfg.FedexID) == "" || strings.TrimSpace(cfg.FedexSecret) == "" {
		return nil, ErrMissingFedexCredentials
	}

	httpClient := resty.New().
		SetBaseURL(cfg.FedexBaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	f := &FedEx{
		http:          httpClient,
		tokens:        tokens,
		accountNumber: cfg.FedexAccountNumber,
		shipper: Address{
			StreetLines: []string{cfg.ShipperStreet},
			City:        cfg.ShipperCity,
			State:       cfg.ShipperState,
			PostalCode:  cfg.ShipperPostalCode,
			CountryCode: "US",
		},
		logger: logger.Named("fedex"),
	}
	tokens.Register(CarrierFedEx, f.acquireToken(cfg))
	return f, nil
}

func (f *FedEx) acquireToken(cfg config.Config) AcquireFunc {
	return func(ctx context.Context) (Token, error) {
		var body tokenResponse
		resp, err := f.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/x-www-form-urlencoded").
			SetFormData(map[string]string{
				"grant_type":    "client_credentials",
				"client_id":     cfg.FedexID,
				"client_secret": cfg.FedexSecret,
			}).
			SetResult(&body).
			Post("/oauth/token")
		if err != nil {
			return Token{}, fmt.Errorf("fedex token request: %w", err)
		}
		if resp.IsError() {
			return Token{}, &APIError{
				Carrier:    CarrierFedEx,
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

// RateQuote posts the rate request and returns the raw rateReplyDetails rows.
// Normalization and ranking belong to the TMS pipeline.
func (f *FedEx) RateQuote(ctx context.Context, input RateQuoteInput) ([]map[string]any, error) {
	payload := f.ratePayload(input)

	var out struct {
		Output struct {
			RateReplyDetails []map[string]any `json:"rateReplyDetails"`
		} `json:"output"`
	}
	if err := f.post(ctx, "/rate/v1/rates/quotes", payload, &out); err != nil {
		return nil, err
	}
	return out.Output.RateReplyDetails, nil
}

func (f *FedEx) ratePayload(input RateQuoteInput) map[string]any {
	shipDate := input.ShipDate
	if shipDate == "" {
		shipDate = time.Now().Format("2006-01-02")
	}
	return map[string]any{
		"accountNumber": map[string]any{"value": f.accountNumber},
		"rateRequestControlParameters": map[string]any{
			"returnTransitTimes":          true,
			"servicesNeededOnRateFailure": true,
			"variableOptions":             "FREIGHT_GUARANTEE",
			"rateSortOrder":               "SERVICENAMETRADITIONAL",
		},
		"requestedShipment": map[string]any{
			"shipper":           map[string]any{"address": f.shipper},
			"recipient":         map[string]any{"address": input.Recipient},
			"preferredCurrency": "USD",
			"rateRequestType":   []string{"LIST", "ACCOUNT"},
			"shipDateStamp":     shipDate,
			"pickupType":        "DROPOFF_AT_FEDEX_LOCATION",
			"requestedPackageLineItems": []map[string]any{{
				"subPackagingType":  "YOUR_PACKAGING",
				"groupPackageCount": 1,
				"weight": map[string]any{
					"units": "LB",
					"value": input.Package.WeightLbs.InexactFloat64(),
				},
				"dimensions": map[string]any{
					"length": input.Package.LengthIn,
					"width":  input.Package.WidthIn,
					"height": input.Package.HeightIn,
					"units":  "IN",
				},
				"declaredValue": map[string]any{
					"amount":   input.Package.DeclaredValue.InexactFloat64(),
					"currency": "USD",
				},
			}},
		},
	}
}

// post issues an authenticated call, refreshing the token and retrying once
// when FedEx rejects it.
func (f *FedEx) post(ctx context.Context, path string, body, result any) error {
	for attempt := 0; ; attempt++ {
		token, err := f.tokens.Get(ctx, CarrierFedEx)
		if err != nil {
			return err
		}

		resp, err := f.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetBody(body).
			SetResult(result).
			Post(path)
		if err != nil {
			return fmt.Errorf("fedex request: %w", err)
		}
		if resp.StatusCode() == http.StatusUnauthorized && attempt == 0 {
			f.logger.Warn("fedex rejected a cached token, refreshing once")
			f.tokens.Invalidate(CarrierFedEx)
			continue
		}
		if resp.IsError() {
			return &APIError{
				Carrier:    CarrierFedEx,
				StatusCode: resp.StatusCode(),
				Status:     resp.Status(),
				Body:       strings.TrimSpace(resp.String()),
			}
		}
		return nil
	}
}
