package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"

	"github.com/shopspring/decimal"
)

type NewItem struct {
	Name              string
	Category          models.ItemCategory
	Quantity          decimal.Decimal
	Unit              models.Unit
	CostPerUnit       *decimal.Decimal
	SupplierID        *uint
	ExpiryDate        *time.Time
	LowStockThreshold *decimal.Decimal
	Notes             string
}

// ItemPatch carries metadata changes; nil fields are left untouched.
// Quantity changes only through ApplyTransaction.
type ItemPatch struct {
	Name              *string
	Category          *models.ItemCategory
	Unit              *models.Unit
	CostPerUnit       *decimal.Decimal
	SupplierID        *uint
	ExpiryDate        *time.Time
	LowStockThreshold *decimal.Decimal
	Notes             *string

	// Clear* unset optional metadata and take precedence over the value
	// field of the same name.
	ClearCostPerUnit       bool
	ClearSupplierID        bool
	ClearExpiryDate        bool
	ClearLowStockThreshold bool
}

func (l *Ledger) CreateItem(ctx context.Context, farmID uint, in NewItem) (*models.InventoryItem, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, invalid("name", "is required")
	case !in.Category.Valid():
		return nil, invalid("category", "unknown category")
	case in.Unit == "":
		return nil, invalid("unit", "is required")
	case !in.Unit.Valid():
		return nil, invalid("unit", "unknown unit")
	case in.Quantity.IsNegative():
		return nil, invalid("quantity", "cannot be negative")
	}
	if err := CheckStorable("quantity", in.Quantity); err != nil {
		return nil, err
	}
	if err := checkAmount("cost_per_unit", in.CostPerUnit); err != nil {
		return nil, err
	}
	if err := checkAmount("low_stock_threshold", in.LowStockThreshold); err != nil {
		return nil, err
	}

	now := l.now()
	item := &models.InventoryItem{
		ID:                newItemID(),
		FarmID:            farmID,
		Name:              name,
		Category:          in.Category,
		Quantity:          in.Quantity,
		InitialQuantity:   in.Quantity,
		Unit:              in.Unit,
		CostPerUnit:       in.CostPerUnit,
		SupplierID:        in.SupplierID,
		ExpiryDate:        in.ExpiryDate,
		LowStockThreshold: in.LowStockThreshold,
		Notes:             strings.TrimSpace(in.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := l.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (l *Ledger) GetItem(ctx context.Context, farmID uint, itemID string) (*models.InventoryItem, error) {
	return l.store.GetItem(ctx, farmID, itemID)
}

func (l *Ledger) ListItems(ctx context.Context, farmID uint, q ItemQuery) ([]models.InventoryItem, int64, error) {
	q, err := q.normalize()
	if err != nil {
		return nil, 0, err
	}
	q.Search = strings.TrimSpace(q.Search)
	return l.store.ListItems(ctx, farmID, q)
}

// UpdateItemMetadata changes everything but the quantity. It fails with a
// ConflictError instead of waiting when a transaction is being applied to
// the same item.
func (l *Ledger) UpdateItemMetadata(ctx context.Context, farmID uint, itemID string, patch ItemPatch) (*models.InventoryItem, error) {
	unlock, err := l.locker.TryAcquire(ctx, ItemLockKey(itemID))
	if err != nil {
		if errors.Is(err, ErrLockNotObtained) {
			return nil, &ConflictError{ItemID: itemID, Reason: "a stock transaction is in progress", Err: err}
		}
		return nil, persistence("acquire item lock", err)
	}
	defer unlock()

	item, err := l.store.GetItem(ctx, farmID, itemID)
	if err != nil {
		return nil, err
	}
	if err := l.applyPatch(ctx, item, patch); err != nil {
		return nil, err
	}
	item.UpdatedAt = l.now()
	if err := l.store.UpdateItemMetadata(ctx, item, item.Version); err != nil {
		return nil, err
	}
	return item, nil
}

func (l *Ledger) applyPatch(ctx context.Context, item *models.InventoryItem, p ItemPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return invalid("name", "cannot be empty")
		}
		item.Name = name
	}
	if p.Category != nil {
		if !p.Category.Valid() {
			return invalid("category", "unknown category")
		}
		item.Category = *p.Category
	}
	if p.Unit != nil && *p.Unit != item.Unit {
		if !p.Unit.Valid() {
			return invalid("unit", "unknown unit")
		}
		// Recorded deltas are expressed in the current unit.
		used, err := l.store.HasTransactions(ctx, item.ID)
		if err != nil {
			return err
		}
		if used {
			return invalid("unit", "cannot change once transactions exist")
		}
		item.Unit = *p.Unit
	}
	if p.CostPerUnit != nil {
		if err := checkAmount("cost_per_unit", p.CostPerUnit); err != nil {
			return err
		}
		item.CostPerUnit = p.CostPerUnit
	}
	if p.LowStockThreshold != nil {
		if err := checkAmount("low_stock_threshold", p.LowStockThreshold); err != nil {
			return err
		}
		item.LowStockThreshold = p.LowStockThreshold
	}
	if p.SupplierID != nil {
		item.SupplierID = p.SupplierID
	}
	if p.ExpiryDate != nil {
		item.ExpiryDate = p.ExpiryDate
	}
	if p.ClearCostPerUnit {
		item.CostPerUnit = nil
	}
	if p.ClearSupplierID {
		item.SupplierID = nil
	}
	if p.ClearExpiryDate {
		item.ExpiryDate = nil
	}
	if p.ClearLowStockThreshold {
		item.LowStockThreshold = nil
	}
	if p.Notes != nil {
		item.Notes = strings.TrimSpace(*p.Notes)
	}
	return nil
}

// DeleteItem archives the item. Its transactions stay readable through
// TransactionHistory.
func (l *Ledger) DeleteItem(ctx context.Context, farmID uint, itemID string) error {
	unlock, err := l.locker.Acquire(ctx, ItemLockKey(itemID))
	if err != nil {
		if errors.Is(err, ErrLockNotObtained) {
			return &ConflictError{ItemID: itemID, Reason: "item is busy, try again", Err: err}
		}
		return persistence("acquire item lock", err)
	}
	defer unlock()

	return l.store.ArchiveItem(ctx, farmID, itemID, l.now())
}

func checkAmount(field string, d *decimal.Decimal) error {
	if d != nil && d.IsNegative() {
		return invalid(field, "cannot be negative")
	}
	return checkStorablePtr(field, d)
}
