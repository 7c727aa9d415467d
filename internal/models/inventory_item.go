package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemCategory string

const (
	CategoryFeed       ItemCategory = "feed"
	CategoryMedication ItemCategory = "medication"
	CategoryEquipment  ItemCategory = "equipment"
	CategorySupplies   ItemCategory = "supplies"
	CategoryOther      ItemCategory = "other"
)

func (c ItemCategory) Valid() bool {
	switch c {
	case CategoryFeed, CategoryMedication, CategoryEquipment, CategorySupplies, CategoryOther:
		return true
	}
	return false
}

type Unit string

const (
	UnitKilograms   Unit = "kilograms"
	UnitGrams       Unit = "grams"
	UnitPounds      Unit = "pounds"
	UnitTons        Unit = "tons"
	UnitLiters      Unit = "liters"
	UnitMilliliters Unit = "milliliters"
	UnitGallons     Unit = "gallons"
	UnitUnits       Unit = "units"
	UnitPieces      Unit = "pieces"
	UnitBags        Unit = "bags"
	UnitBales       Unit = "bales"
	UnitBoxes       Unit = "boxes"
	UnitBottles     Unit = "bottles"
	UnitDoses       Unit = "doses"
	UnitVials       Unit = "vials"
	UnitPacks       Unit = "packs"
)

var units = map[Unit]struct{}{
	UnitKilograms: {}, UnitGrams: {}, UnitPounds: {}, UnitTons: {},
	UnitLiters: {}, UnitMilliliters: {}, UnitGallons: {},
	UnitUnits: {}, UnitPieces: {}, UnitBags: {}, UnitBales: {}, UnitBoxes: {},
	UnitBottles: {}, UnitDoses: {}, UnitVials: {}, UnitPacks: {},
}

func (u Unit) Valid() bool {
	_, ok := units[u]
	return ok
}

// InventoryItem.Quantity is written only by the ledger store, inside the
// same storage transaction that appends the InventoryTransaction causing it.
type InventoryItem struct {
	ID                string           `gorm:"primaryKey;size:36" json:"id"`
	FarmID            uint             `gorm:"index;not null" json:"farm_id"`
	Name              string           `gorm:"size:150;not null" json:"name"`
	Category          ItemCategory     `gorm:"size:20;index;not null" json:"category"`
	Quantity          decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0" json:"quantity"`
	InitialQuantity   decimal.Decimal  `gorm:"type:decimal(20,4);not null;default:0" json:"initial_quantity"`
	Unit              Unit             `gorm:"size:20;not null" json:"unit"`
	CostPerUnit       *decimal.Decimal `gorm:"type:decimal(20,4)" json:"cost_per_unit"`
	SupplierID        *uint            `gorm:"index" json:"supplier_id"`
	ExpiryDate        *time.Time       `json:"expiry_date"`
	LowStockThreshold *decimal.Decimal `gorm:"type:decimal(20,4)" json:"low_stock_threshold"`
	Notes             string           `gorm:"size:1000" json:"notes"`
	Version           int64            `gorm:"not null;default:0" json:"version"`
	ArchivedAt        *time.Time       `gorm:"index" json:"archived_at"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
