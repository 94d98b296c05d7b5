package tms

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// RateOption is one normalized, rankable quote from the carrier. Raw keeps
// the original reply row for drill-down.
type RateOption struct {
	ServiceType       string
	DeliveryTimestamp string
	NetCharge         decimal.Decimal
	Currency          string
	Method            ShipMethod
	Mapped            bool
	Raw               map[string]any
}

// NormalizeRates turns raw rateReplyDetails rows into ranked options:
// rows without a numeric totalNetCharge in ratedShipmentDetails are dropped,
// the rest sort ascending by net charge (ties keep reply order), and at most
// limit options survive.
func NormalizeRates(raw []map[string]any, limit int) []RateOption {
	options := make([]RateOption, 0, len(raw))
	for _, row := range raw {
		charge, currency, ok := netCharge(row)
		if !ok {
			continue
		}
		serviceType, _ := row["serviceType"].(string)
		method, mapped := MapService(serviceType)
		options = append(options, RateOption{
			ServiceType:       serviceType,
			DeliveryTimestamp: deliveryTimestamp(row),
			NetCharge:         charge,
			Currency:          currency,
			Method:            method,
			Mapped:            mapped,
			Raw:               row,
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].NetCharge.LessThan(options[j].NetCharge)
	})

	if limit > 0 && len(options) > limit {
		options = options[:limit]
	}
	return options
}

// netCharge digs ratedShipmentDetails[0].totalNetCharge out of a reply row.
func netCharge(row map[string]any) (decimal.Decimal, string, bool) {
	details, ok := row["ratedShipmentDetails"].([]any)
	if !ok || len(details) == 0 {
		return decimal.Zero, "", false
	}
	first, ok := details[0].(map[string]any)
	if !ok {
		return decimal.Zero, "", false
	}

	charge, ok := toDecimal(first["totalNetCharge"])
	if !ok || charge.IsNegative() {
		return decimal.Zero, "", false
	}

	currency, _ := first["currency"].(string)
	if currency == "" {
		currency = "USD"
	}
	return charge, currency, true
}

func deliveryTimestamp(row map[string]any) string {
	if ts, ok := row["deliveryTimestamp"].(string); ok {
		return ts
	}
	if commit, ok := row["commit"].(map[string]any); ok {
		if ts, ok := commit["dateDetail"].(map[string]any); ok {
			if day, ok := ts["dayFormat"].(string); ok {
				return day
			}
		}
	}
	return ""
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	case decimal.Decimal:
		return n, true
	}
	return decimal.Zero, false
}
