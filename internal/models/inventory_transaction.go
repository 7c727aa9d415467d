package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionPurchase   TransactionType = "purchase"
	TransactionRestock    TransactionType = "restock"
	TransactionUsage      TransactionType = "usage"
	TransactionAdjustment TransactionType = "adjustment"
	TransactionLoss       TransactionType = "loss"
)

// InventoryTransaction rows are append-only. There is no update or delete
// path for them anywhere in the service.
type InventoryTransaction struct {
	ID              string           `gorm:"primaryKey;size:36" json:"id"`
	InventoryItemID string           `gorm:"size:36;not null;index:idx_inventory_txn_item_created,priority:1" json:"inventory_item_id"`
	FarmID          uint             `gorm:"index;not null" json:"farm_id"`
	Type            TransactionType  `gorm:"size:20;not null" json:"transaction_type"`
	QuantityDelta   decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"quantity_delta"`
	QuantityAfter   decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"quantity_after"`
	Cost            *decimal.Decimal `gorm:"type:decimal(20,4)" json:"cost"`
	SupplierID      *uint            `json:"supplier_id"`
	Notes           string           `gorm:"size:1000" json:"notes"`
	PerformedBy     uint             `gorm:"not null" json:"performed_by"`
	CreatedAt       time.Time        `gorm:"not null;index:idx_inventory_txn_item_created,priority:2" json:"created_at"`
}
