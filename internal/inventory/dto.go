package inventory

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type CreateItemRequest struct {
	Name              string           `json:"name" validate:"required,max=150"`
	Category          string           `json:"category" validate:"required,oneof=feed medication equipment supplies other"`
	Quantity          *decimal.Decimal `json:"quantity" validate:"required"`
	Unit              string           `json:"unit" validate:"required"`
	CostPerUnit       *decimal.Decimal `json:"cost_per_unit"`
	SupplierID        *uint            `json:"supplier_id" validate:"omitempty,gt=0"`
	ExpiryDate        string           `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold"`
	Notes             string           `json:"notes" validate:"max=1000"`
}

// UpdateItemRequest has no quantity field; Quantity only exists to detect
// and reject attempts to set it.
type UpdateItemRequest struct {
	Name              *string          `json:"name" validate:"omitempty,max=150"`
	Category          *string          `json:"category" validate:"omitempty,oneof=feed medication equipment supplies other"`
	Unit              *string          `json:"unit"`
	CostPerUnit       *decimal.Decimal `json:"cost_per_unit"`
	SupplierID        *uint            `json:"supplier_id" validate:"omitempty,gt=0"`
	ExpiryDate        *string          `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold"`
	Notes             *string          `json:"notes" validate:"omitempty,max=1000"`
	Quantity          any              `json:"quantity"`
}

type ApplyTransactionRequest struct {
	TransactionType string           `json:"transaction_type" validate:"required,oneof=purchase restock usage adjustment loss"`
	Quantity        *decimal.Decimal `json:"quantity" validate:"required"`
	Unit            string           `json:"unit"`
	Cost            *decimal.Decimal `json:"cost"`
	SupplierID      *uint            `json:"supplier_id" validate:"omitempty,gt=0"`
	Notes           string           `json:"notes" validate:"max=1000"`
}

type ItemResponse struct {
	ID                string              `json:"id"`
	FarmID            uint                `json:"farm_id"`
	Name              string              `json:"name"`
	Category          models.ItemCategory `json:"category"`
	Quantity          decimal.Decimal     `json:"quantity"`
	Unit              models.Unit         `json:"unit"`
	CostPerUnit       *decimal.Decimal    `json:"cost_per_unit"`
	SupplierID        *uint               `json:"supplier_id"`
	ExpiryDate        *string             `json:"expiry_date"`
	LowStockThreshold *decimal.Decimal    `json:"low_stock_threshold"`
	StockStatus       ledger.StockStatus  `json:"stock_status"`
	Notes             string              `json:"notes"`
	Version           int64               `json:"version"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

type TransactionResponse struct {
	ID              string                 `json:"id"`
	InventoryItemID string                 `json:"inventory_item_id"`
	TransactionType models.TransactionType `json:"transaction_type"`
	QuantityDelta   decimal.Decimal        `json:"quantity_delta"`
	QuantityAfter   decimal.Decimal        `json:"quantity_after"`
	Cost            *decimal.Decimal       `json:"cost"`
	SupplierID      *uint                  `json:"supplier_id"`
	Notes           string                 `json:"notes"`
	PerformedBy     uint                   `json:"performed_by"`
	CreatedAt       time.Time              `json:"created_at"`
}

type ApplyTransactionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Item        ItemResponse        `json:"item"`
}

type ListResponse[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func toItemResponse(item *models.InventoryItem) ItemResponse {
	resp := ItemResponse{
		ID:                item.ID,
		FarmID:            item.FarmID,
		Name:              item.Name,
		Category:          item.Category,
		Quantity:          item.Quantity,
		Unit:              item.Unit,
		CostPerUnit:       item.CostPerUnit,
		SupplierID:        item.SupplierID,
		LowStockThreshold: item.LowStockThreshold,
		StockStatus:       ledger.StatusOf(item),
		Notes:             item.Notes,
		Version:           item.Version,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
	if item.ExpiryDate != nil {
		d := item.ExpiryDate.Format(dateLayout)
		resp.ExpiryDate = &d
	}
	return resp
}

func toItemResponses(items []models.InventoryItem) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, toItemResponse(&items[i]))
	}
	return out
}

func toTransactionResponse(t *models.InventoryTransaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		InventoryItemID: t.InventoryItemID,
		TransactionType: t.Type,
		QuantityDelta:   t.QuantityDelta,
		QuantityAfter:   t.QuantityAfter,
		Cost:            t.Cost,
		SupplierID:      t.SupplierID,
		Notes:           t.Notes,
		PerformedBy:     t.PerformedBy,
		CreatedAt:       t.CreatedAt,
	}
}

// nullFields reports which of keys the JSON object in raw sets to null.
// Absent keys and keys with a value are both false.
func nullFields(raw []byte, keys ...string) (map[string]bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		v, ok := fields[k]
		out[k] = ok && bytes.Equal(bytes.TrimSpace(v), []byte("null"))
	}
	return out, nil
}

func parseDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, &ledger.ValidationError{Field: field, Message: "must be YYYY-MM-DD"}
	}
	return &d, nil
}

// TransactionResponseOf renders a committed transaction for other HTTP
// packages.
func TransactionResponseOf(t *models.InventoryTransaction) TransactionResponse {
	return toTransactionResponse(t)
}
