package tms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/treyhulse/kcsf-ops/internal/cache"
	"github.com/treyhulse/kcsf-ops/internal/carrier"
	"github.com/treyhulse/kcsf-ops/internal/config"
	"github.com/treyhulse/kcsf-ops/internal/netsuite"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultMaxOptions is how many ranked quotes the default flow keeps;
	// the TMS screen can ask for up to MaxOptionsLimit.
	DefaultMaxOptions = 4
	MaxOptionsLimit   = 8

	defaultDimensionIn   = 20
	defaultDeclaredValue = 100
)

var (
	ErrUnmappedService = errors.New("service has no NetSuite ship method and cannot be written back")
	ErrMissingWeight   = errors.New("order has no weight and no override was supplied")
)

// OrderDetail is the projection of a sales order the TMS screen works from.
type OrderDetail struct {
	ID          string
	Status      string
	Subtotal    decimal.Decimal
	Total       decimal.Decimal
	BillAddress string
	ShipAddress string
	SalesRep    string
	ShipMethod  string
	Currency    string
	CreatedDate string
	WeightLbs   decimal.Decimal
}

// Overrides are operator-supplied destination and weight fields. Non-empty
// values win over whatever the address parser recovered.
type Overrides struct {
	City        string
	State       string
	PostalCode  string
	CountryCode string
	WeightLbs   decimal.Decimal
}

// Pipeline runs the transportation flow end to end: list candidate orders,
// project the chosen one, parse its address, quote rates, rank and map them,
// and write the selection back to the ERP. Everything before the write-back
// is side-effect free and retryable.
type Pipeline struct {
	erp            *netsuite.Client
	fedex          *carrier.FedEx
	openSOSearchID string
	orders         *cache.Cache[[]netsuite.Row]
	logger         *zap.Logger
}

func NewPipeline(cfg config.Config, erp *netsuite.Client, fedex *carrier.FedEx, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		erp:            erp,
		fedex:          fedex,
		openSOSearchID: cfg.OpenSOSearchID,
		orders:         cache.New[[]netsuite.Row](cache.TTLOrders),
		logger:         logger.Named("tms"),
	}
}

// ListOpenOrders returns the candidate open sales orders, cached for the
// order TTL keyed by saved-search id.
func (p *Pipeline) ListOpenOrders(ctx context.Context) ([]netsuite.Row, error) {
	return p.orders.GetOrFill(p.openSOSearchID, func() ([]netsuite.Row, error) {
		return p.erp.SavedSearch(ctx, p.openSOSearchID)
	})
}

// OrderDetail fetches and projects the chosen sales order.
func (p *Pipeline) OrderDetail(ctx context.Context, orderID string) (OrderDetail, error) {
	record, err := p.erp.GetRecord(ctx, netsuite.RecordSalesOrder, orderID)
	if err != nil {
		return OrderDetail{}, err
	}

	return OrderDetail{
		ID:          orderID,
		Status:      refName(record["status"]),
		Subtotal:    decimalField(record, "subtotal"),
		Total:       decimalField(record, "total"),
		BillAddress: netsuite.String(record, "billAddress"),
		ShipAddress: netsuite.String(record, "shipAddress"),
		SalesRep:    refName(record["salesRep"]),
		ShipMethod:  refName(record["shipMethod"]),
		Currency:    refName(record["currency"]),
		CreatedDate: netsuite.String(record, "createdDate"),
		WeightLbs:   decimalField(record, "custbody_total_weight"),
	}, nil
}

// Quote parses the order's address, applies operator overrides, and returns
// ranked rate options. maxOptions outside 1..MaxOptionsLimit falls back to
// the default.
func (p *Pipeline) Quote(ctx context.Context, orderID string, overrides Overrides, maxOptions int) ([]RateOption, error) {
	detail, err := p.OrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return p.QuoteDetail(ctx, detail, overrides, maxOptions)
}

// QuoteDetail is Quote for a detail the caller already fetched.
func (p *Pipeline) QuoteDetail(ctx context.Context, detail OrderDetail, overrides Overrides, maxOptions int) ([]RateOption, error) {
	if maxOptions < 1 || maxOptions > MaxOptionsLimit {
		maxOptions = DefaultMaxOptions
	}

	recipient, err := p.recipient(detail, overrides)
	if err != nil {
		return nil, err
	}

	weight := detail.WeightLbs
	if overrides.WeightLbs.IsPositive() {
		weight = overrides.WeightLbs
	}
	if !weight.IsPositive() {
		return nil, ErrMissingWeight
	}

	raw, err := p.fedex.RateQuote(ctx, carrier.RateQuoteInput{
		Recipient: recipient,
		Package: carrier.Package{
			WeightLbs:     weight,
			LengthIn:      defaultDimensionIn,
			WidthIn:       defaultDimensionIn,
			HeightIn:      defaultDimensionIn,
			DeclaredValue: decimal.NewFromInt(defaultDeclaredValue),
		},
		ShipDate: time.Now().Format("2006-01-02"),
	})
	if err != nil {
		return nil, fmt.Errorf("quoting order %s: %w", detail.ID, err)
	}

	options := NormalizeRates(raw, maxOptions)
	p.logger.Info("rate quote ranked",
		zap.String("order", detail.ID),
		zap.Int("raw_options", len(raw)),
		zap.Int("kept", len(options)),
	)
	return options, nil
}

// recipient combines the parsed ship address with operator overrides; the
// parser is best effort, overrides always win.
func (p *Pipeline) recipient(detail OrderDetail, overrides Overrides) (carrier.Address, error) {
	parsed, ok := ParseShipAddress(detail.ShipAddress)
	if !ok {
		p.logger.Warn("ship address not recognized, relying on overrides",
			zap.String("order", detail.ID),
		)
	}

	addr := carrier.Address{
		City:        firstNonEmpty(overrides.City, parsed.City),
		State:       firstNonEmpty(overrides.State, parsed.State),
		PostalCode:  firstNonEmpty(overrides.PostalCode, parsed.PostalCode),
		CountryCode: firstNonEmpty(overrides.CountryCode, parsed.Country, "US"),
	}
	if parsed.Street != "" {
		addr.StreetLines = []string{parsed.Street}
	}
	if addr.City == "" || addr.State == "" || addr.PostalCode == "" {
		return carrier.Address{}, fmt.Errorf("order %s: destination is incomplete; supply city, state, and postal code", detail.ID)
	}
	return addr, nil
}

// WriteBack patches the chosen rate onto the sales order. Unmapped services
// are refused; the PATCH is single-shot and never retried.
func (p *Pipeline) WriteBack(ctx context.Context, orderID string, option RateOption) error {
	if !option.Mapped {
		return fmt.Errorf("%w: %s", ErrUnmappedService, option.ServiceType)
	}

	body := map[string]any{
		"shippingCost": option.NetCharge.InexactFloat64(),
		"shipMethod":   map[string]any{"id": option.Method.ID},
	}
	if err := p.erp.PatchRecord(ctx, netsuite.RecordSalesOrder, orderID, body); err != nil {
		return fmt.Errorf("writing shipping selection to order %s: %w", orderID, err)
	}

	p.logger.Info("shipping selection written back",
		zap.String("order", orderID),
		zap.String("service", option.ServiceType),
		zap.Int("ship_method_id", option.Method.ID),
		zap.String("net_charge", option.NetCharge.StringFixed(2)),
	)
	return nil
}

// MatchRate reports what fraction of orders had a mappable cheapest option.
// Always a fraction in [0,1]; formatting happens at the rendering boundary.
func MatchRate(matched, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

func refName(v any) string {
	switch field := v.(type) {
	case string:
		return field
	case map[string]any:
		if name, ok := field["refName"].(string); ok {
			return name
		}
		if id, ok := field["id"].(string); ok {
			return id
		}
	}
	return ""
}

func decimalField(row netsuite.Row, key string) decimal.Decimal {
	if d, ok := toDecimal(row[key]); ok {
		return d
	}
	return decimal.Zero
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
