package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeedingRecord. When InventoryItemID is set the record was persisted in the
// same storage transaction as the usage debit referenced by
// InventoryTransactionID.
type FeedingRecord struct {
	ID                     uint            `gorm:"primaryKey" json:"id"`
	FarmID                 uint            `gorm:"index;not null" json:"farm_id"`
	AnimalID               *uint           `gorm:"index" json:"animal_id"`
	GroupID                *uint           `gorm:"index" json:"group_id"`
	FeedType               string          `gorm:"size:100;not null" json:"feed_type"`
	Quantity               decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Unit                   Unit            `gorm:"size:20;not null" json:"unit"`
	FedAt                  time.Time       `gorm:"index;not null" json:"fed_at"`
	InventoryItemID        *string         `gorm:"size:36;index" json:"inventory_item_id"`
	InventoryTransactionID *string         `gorm:"size:36" json:"inventory_transaction_id"`
	Notes                  string          `gorm:"size:500" json:"notes"`
	RecordedBy             uint            `json:"recorded_by"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}
