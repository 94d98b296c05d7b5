package mrp

import (
	"sort"
	"strings"

	"github.com/treyhulse/kcsf-ops/internal/netsuite"
)

// Row is the reconciled supply/demand picture for one item. The source rows
// are kept verbatim for drill-down; the Has* flags distinguish "no row from
// that source" from "a row of zeros".
type Row struct {
	Item        string
	DisplayName string
	Warehouse   string

	OnHand    float64
	Available float64

	OrderedSales     float64
	CommittedSales   float64
	FulfilledSales   float64
	BackOrderedSales float64

	OrderedPurchase     float64
	FulfilledPurchase   float64
	NotReceivedPurchase float64

	NetInventory float64

	HasInventory bool
	HasSales     bool
	HasPurchase  bool

	Inventory netsuite.Row
	Sales     netsuite.Row
	Purchase  netsuite.Row
}

// Input carries the three source result sets the join reconciles.
type Input struct {
	Inventory     []netsuite.Row
	SalesLines    []netsuite.Row
	PurchaseLines []netsuite.Row
}

// Join performs the full outer merge on item. Column names are lowercased
// first so the three sources merge deterministically; missing numeric fields
// coerce to zero. Output is sorted by item.
func Join(input Input) []Row {
	rows := make(map[string]*Row)

	get := func(item string) *Row {
		if r, ok := rows[item]; ok {
			return r
		}
		r := &Row{Item: item}
		rows[item] = r
		return r
	}

	for _, src := range input.Inventory {
		row := lowerKeys(src)
		item := itemKey(row)
		if item == "" {
			continue
		}
		r := get(item)
		r.HasInventory = true
		r.Inventory = row
		r.DisplayName = pickString(row, "displayname", "display_name", "description")
		r.Warehouse = pickString(row, "warehouse", "location")
		r.OnHand = pickNumber(row, "on_hand", "onhand", "quantityonhand")
		r.Available = pickNumber(row, "available", "quantityavailable")
	}

	for _, src := range input.SalesLines {
		row := lowerKeys(src)
		item := itemKey(row)
		if item == "" {
			continue
		}
		r := get(item)
		r.HasSales = true
		r.Sales = row
		if r.DisplayName == "" {
			r.DisplayName = pickString(row, "displayname", "display_name", "item_name")
		}
		r.OrderedSales += pickNumber(row, "ordered_sales", "ordered", "quantity")
		r.CommittedSales += pickNumber(row, "committed_sales", "committed", "quantitycommitted")
		r.FulfilledSales += pickNumber(row, "fulfilled_sales", "fulfilled", "quantityfulfilled")
		r.BackOrderedSales += pickNumber(row, "back_ordered_sales", "backordered", "quantitybackordered")
	}

	for _, src := range input.PurchaseLines {
		row := lowerKeys(src)
		item := itemKey(row)
		if item == "" {
			continue
		}
		r := get(item)
		r.HasPurchase = true
		r.Purchase = row
		if r.DisplayName == "" {
			r.DisplayName = pickString(row, "displayname", "display_name", "item_name")
		}
		r.OrderedPurchase += pickNumber(row, "ordered_purchase", "ordered", "quantity")
		r.FulfilledPurchase += pickNumber(row, "fulfilled_purchase", "fulfilled", "quantityreceived")
		r.NotReceivedPurchase += pickNumber(row, "not_received_purchase", "notreceived", "quantityonshipments")
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		r.NetInventory = (r.Available + r.OrderedPurchase) - (r.OrderedSales + r.BackOrderedSales)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out
}

func lowerKeys(row netsuite.Row) netsuite.Row {
	out := make(netsuite.Row, len(row))
	for k, v := range row {
		out[strings.ToLower(k)] = v
	}
	return out
}

func itemKey(row netsuite.Row) string {
	return strings.TrimSpace(pickString(row, "item", "itemid", "item_id"))
}

func pickString(row netsuite.Row, keys ...string) string {
	for _, key := range keys {
		if s := netsuite.String(row, key); s != "" {
			return s
		}
	}
	return ""
}

func pickNumber(row netsuite.Row, keys ...string) float64 {
	for _, key := range keys {
		if _, ok := row[key]; ok {
			return netsuite.Number(row, key)
		}
	}
	return 0
}
