package netsuite

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record types the dashboard reads and writes.
const (
	RecordSalesOrder       = "salesOrder"
	RecordWorkOrder        = "workOrder"
	RecordPurchaseOrder    = "purchaseOrder"
	RecordInventoryBalance = "inventoryBalance"
	RecordItemFulfillment  = "itemFulfillment"
)

type restletPage struct {
	Results []Row `json:"results"`
	HasMore bool  `json:"hasMore"`
}

type suiteQLLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type suiteQLPage struct {
	Items        []Row         `json:"items"`
	Links        []suiteQLLink `json:"links"`
	Count        int           `json:"count"`
	TotalResults int           `json:"totalResults"`
	HasMore      bool          `json:"hasMore"`
}

// String pulls a field out of an untyped row, tolerating missing keys.
func String(row Row, key string) string {
	if v, ok := row[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		if n, ok := v.(json.Number); ok {
			return n.String()
		}
	}
	return ""
}

// Number coerces a row field to float64; anything non-numeric is 0.
func Number(row Row, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}
