package carrier

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type APIError struct {
	Carrier    Carrier
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s api error: %s", e.Carrier, e.Status)
	}
	return fmt.Sprintf("%s api error: %s: %s", e.Carrier, e.Status, e.Body)
}

// Address is the structured destination a quote is rated against.
type Address struct {
	StreetLines []string `json:"streetLines,omitempty"`
	City        string   `json:"city"`
	State       string   `json:"stateOrProvinceCode"`
	PostalCode  string   `json:"postalCode"`
	CountryCode string   `json:"countryCode"`
	Residential bool     `json:"residential"`
}

// Package is the single parcel the default flow rates.
type Package struct {
	WeightLbs     decimal.Decimal
	LengthIn      int
	WidthIn       int
	HeightIn      int
	DeclaredValue decimal.Decimal
}

// RateQuoteInput is everything a rate call needs beyond fixed credentials.
type RateQuoteInput struct {
	Recipient Address
	Package   Package
	ShipDate  string // YYYY-MM-DD
}

// Claim is the subset of claim fields the operations screens submit.
type Claim struct {
	ProNumber     string          `json:"proNumber"`
	ClaimantName  string          `json:"claimantName"`
	ClaimantEmail string          `json:"claimantEmail"`
	ClaimType     string          `json:"claimType"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
