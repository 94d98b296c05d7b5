package mrp

import (
	"context"

	"github.com/treyhulse/kcsf-ops/internal/cache"
	"github.com/treyhulse/kcsf-ops/internal/config"
	"github.com/treyhulse/kcsf-ops/internal/netsuite"

	"go.uber.org/zap"
)

// inventoryQuery is the SuiteQL side of the join. Saved searches supply the
// open sales and purchase lines.
const inventoryQuery = `SELECT item.itemid AS item, item.displayname, loc.name AS warehouse,
  bal.quantityonhand AS on_hand, bal.quantityavailable AS available
FROM inventorybalance bal
JOIN item ON item.id = bal.item
JOIN location loc ON loc.id = bal.location
WHERE item.isinactive = 'F'`

// Engine pulls the three sources and reconciles them into the MRP table.
// Each source caches independently so a stale saved search does not force an
// inventory refetch.
type Engine struct {
	erp                   *netsuite.Client
	salesLinesSearchID    string
	purchaseLinesSearchID string
	inventory             *cache.Cache[[]netsuite.Row]
	searches              *cache.Cache[[]netsuite.Row]
	logger                *zap.Logger
}

func NewEngine(cfg config.Config, erp *netsuite.Client, logger *zap.Logger) *Engine {
	return &Engine{
		erp:                   erp,
		salesLinesSearchID:    cfg.SalesLinesSearchID,
		purchaseLinesSearchID: cfg.PurchaseLinesSearchID,
		inventory:             cache.New[[]netsuite.Row](cache.TTLOperational),
		searches:              cache.New[[]netsuite.Row](cache.TTLOperational),
		logger:                logger.Named("mrp"),
	}
}

// Snapshot fetches inventory, sales lines, and purchase lines and returns
// the joined supply/demand table.
func (e *Engine) Snapshot(ctx context.Context) ([]Row, error) {
	inventory, err := e.inventory.GetOrFill(inventoryQuery, func() ([]netsuite.Row, error) {
		return e.erp.SuiteQL(ctx, inventoryQuery)
	})
	if err != nil {
		return nil, err
	}

	salesLines, err := e.searches.GetOrFill(e.salesLinesSearchID, func() ([]netsuite.Row, error) {
		return e.erp.SavedSearch(ctx, e.salesLinesSearchID)
	})
	if err != nil {
		return nil, err
	}

	purchaseLines, err := e.searches.GetOrFill(e.purchaseLinesSearchID, func() ([]netsuite.Row, error) {
		return e.erp.SavedSearch(ctx, e.purchaseLinesSearchID)
	})
	if err != nil {
		return nil, err
	}

	rows := Join(Input{
		Inventory:     inventory,
		SalesLines:    salesLines,
		PurchaseLines: purchaseLines,
	})
	e.logger.Info("mrp snapshot built",
		zap.Int("inventory_rows", len(inventory)),
		zap.Int("sales_lines", len(salesLines)),
		zap.Int("purchase_lines", len(purchaseLines)),
		zap.Int("items", len(rows)),
	)
	return rows, nil
}
