package ingest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/forecast"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
)

// LoadItems reads an inventory snapshot file.
func LoadItems(path string) ([]domain.InventoryItem, error) {
	f, format, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	items, err := ReadItems(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load items from %s: %w", path, err)
	}

	logger.Log.Info().Str("path", path).Int("items", len(items)).Msg("loaded inventory snapshot")
	return items, nil
}

// ReadItems decodes an inventory snapshot. A blank on-hand cell leaves
// OnHand nil so evaluation reports the missing field.
func ReadItems(r io.Reader, format Format) ([]domain.InventoryItem, error) {
	if format == FormatJSON {
		var items []domain.InventoryItem
		if err := json.NewDecoder(r).Decode(&items); err != nil {
			return nil, fmt.Errorf("failed to decode items: %w", err)
		}
		return items, nil
	}

	t, err := readTable(r, format)
	if err != nil {
		return nil, err
	}

	cols := columns{header: t.header}
	idxSKU := cols.index("sku", "item_code", "product_id")
	idxName := cols.index("name", "item_name", "product name")
	idxOnHand := cols.index("on_hand", "current_stock", "stock", "qty on hand")
	idxReorderPoint := cols.index("reorder_point", "reorder point", "rop")
	idxMin := cols.index("minimum_stock", "min_stock")
	idxMax := cols.index("maximum_stock", "max_stock")
	idxMinOrder := cols.index("min_order_qty", "minimum_order_quantity", "min_order", "min. order")
	idxUnit := cols.index("order_unit", "pack_size")
	idxUnitCost := cols.index("unit_cost", "cost", "hpp")
	idxCritical := cols.index("is_critical", "critical")
	idxPriority := cols.index("priority")
	idxStatus := cols.index("status")

	if idxSKU < 0 {
		return nil, fmt.Errorf("missing sku column in header %v", t.header)
	}

	items := make([]domain.InventoryItem, 0, len(t.rows))
	for _, record := range t.rows {
		rec := row(record)
		if rec.empty() {
			continue
		}

		item := domain.InventoryItem{
			SKU:          rec.get(idxSKU),
			Name:         rec.get(idxName),
			ReorderPoint: rec.numberOr(idxReorderPoint, 0),
			MinimumStock: rec.numberOr(idxMin, 0),
			MaximumStock: rec.numberOr(idxMax, 0),
			MinOrderQty:  rec.integer(idxMinOrder),
			OrderUnit:    rec.integer(idxUnit),
			UnitCost:     rec.numberOr(idxUnitCost, 0),
			Critical:     rec.flag(idxCritical),
			Priority:     rec.get(idxPriority),
			Status:       rec.get(idxStatus),
		}
		if v, ok := rec.number(idxOnHand); ok {
			item.OnHand = domain.Float64(v)
		}

		items = append(items, item)
	}

	return items, nil
}

// LoadVendors reads a vendor catalog file.
func LoadVendors(path string) ([]domain.Vendor, error) {
	f, format, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vendors, err := ReadVendors(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendors from %s: %w", path, err)
	}

	logger.Log.Info().Str("path", path).Int("vendors", len(vendors)).Msg("loaded vendor catalog")
	return vendors, nil
}

// ReadVendors decodes a vendor catalog.
func ReadVendors(r io.Reader, format Format) ([]domain.Vendor, error) {
	if format == FormatJSON {
		var vendors []domain.Vendor
		if err := json.NewDecoder(r).Decode(&vendors); err != nil {
			return nil, fmt.Errorf("failed to decode vendors: %w", err)
		}
		return vendors, nil
	}

	t, err := readTable(r, format)
	if err != nil {
		return nil, err
	}

	cols := columns{header: t.header}
	idxID := cols.index("vendor_id", "supplier_id", "id")
	idxName := cols.index("name", "vendor_name", "vendor", "supplier_name", "supplier")
	idxPrice := cols.index("price_per_unit", "unit_price", "unit_cost", "price")
	idxOrderCost := cols.index("order_cost", "ordering_cost")
	idxLeadTime := cols.index("lead_time_days", "lead_time", "lead time")
	idxHolding := cols.index("holding_cost_rate", "holding_rate")
	idxTrust := cols.index("trust_score", "trust")

	if idxID < 0 && idxName < 0 {
		return nil, fmt.Errorf("missing vendor_id or name column in header %v", t.header)
	}

	vendors := make([]domain.Vendor, 0, len(t.rows))
	for _, record := range t.rows {
		rec := row(record)
		if rec.empty() {
			continue
		}

		v := domain.Vendor{
			VendorID:        rec.get(idxID),
			Name:            rec.get(idxName),
			PricePerUnit:    rec.numberOr(idxPrice, 0),
			OrderCost:       rec.numberOr(idxOrderCost, 0),
			LeadTimeDays:    rec.numberOr(idxLeadTime, 0),
			HoldingCostRate: rec.numberOr(idxHolding, 0),
		}
		if v.VendorID == "" {
			v.VendorID = v.Name
		}
		if v.Name == "" {
			v.Name = v.VendorID
		}
		if score, ok := rec.number(idxTrust); ok {
			v.TrustScore = domain.Float64(score)
		}

		vendors = append(vendors, v)
	}

	return vendors, nil
}

// LoadTransactions reads a transaction feed. Malformed records are dropped
// and described in the returned messages.
func LoadTransactions(path string) ([]domain.Transaction, []string, error) {
	f, format, err := openFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	txns, msgs, err := ReadTransactions(f, format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transactions from %s: %w", path, err)
	}

	for _, msg := range msgs {
		logger.Log.Warn().Str("path", path).Msg(msg)
	}
	logger.Log.Info().
		Str("path", path).
		Int("transactions", len(txns)).
		Int("rejected", len(msgs)).
		Msg("loaded transactions")

	return txns, msgs, nil
}

// ReadTransactions decodes and validates a transaction feed.
func ReadTransactions(r io.Reader, format Format) ([]domain.Transaction, []string, error) {
	raw, err := ReadRawTransactions(r, format)
	if err != nil {
		return nil, nil, err
	}

	txns, msgs := forecast.ParseTransactions(raw)
	return txns, msgs, nil
}

// ReadRawTransactions decodes transaction records without validating them.
func ReadRawTransactions(r io.Reader, format Format) ([]forecast.RawTransaction, error) {
	if format == FormatJSON {
		var raw []forecast.RawTransaction
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode transactions: %w", err)
		}
		return raw, nil
	}

	t, err := readTable(r, format)
	if err != nil {
		return nil, err
	}

	cols := columns{header: t.header}
	idxSKU := cols.index("sku", "item_code", "product_id")
	idxQty := cols.index("quantity", "qty", "usage")
	idxDate := cols.index("date", "transaction_date", "timestamp")

	raw := make([]forecast.RawTransaction, 0, len(t.rows))
	for _, record := range t.rows {
		rec := row(record)
		if rec.empty() {
			continue
		}
		raw = append(raw, forecast.RawTransaction{
			SKU:      rec.get(idxSKU),
			Quantity: rec.get(idxQty),
			Date:     rec.get(idxDate),
		})
	}

	return raw, nil
}
