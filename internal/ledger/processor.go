package ledger

import (
	"context"
	"errors"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type TransactionInput struct {
	Type      models.TransactionType
	Magnitude decimal.Decimal
	// Unit is optional. When set it must equal the item's unit.
	Unit models.Unit
	// Cost and SupplierID are meaningful for purchase and restock only;
	// they are stored as given for the other types.
	Cost        *decimal.Decimal
	SupplierID  *uint
	Notes       string
	PerformedBy uint
}

// CommitHook runs inside the storage transaction of a successful
// ApplyTransaction, after the transaction row and the new quantity are
// staged. An error from a hook rolls the whole operation back.
type CommitHook func(ctx context.Context, tx Tx, txn *models.InventoryTransaction, item *models.InventoryItem) error

// Quantities and amounts are stored as decimal(20,4): at most four
// fractional digits and an absolute value below 10^16.
const StorageScale = 4

var storageLimit = decimal.New(1, 20-StorageScale)

// CheckStorable rejects values the decimal(20,4) columns would round or
// overflow.
func CheckStorable(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(StorageScale)) || d.Abs().GreaterThanOrEqual(storageLimit) {
		return invalid(field, "invalid quantity")
	}
	return nil
}

func checkStorablePtr(field string, d *decimal.Decimal) error {
	if d == nil {
		return nil
	}
	return CheckStorable(field, *d)
}

// SignedDelta applies the sign rule: purchase, restock and adjustment add
// to stock, usage and loss remove from it. magnitude must be positive.
func SignedDelta(t models.TransactionType, magnitude decimal.Decimal) (decimal.Decimal, error) {
	if !magnitude.IsPositive() {
		return decimal.Zero, invalid("quantity", "invalid quantity")
	}
	if err := CheckStorable("quantity", magnitude); err != nil {
		return decimal.Zero, err
	}
	switch t {
	case models.TransactionPurchase, models.TransactionRestock, models.TransactionAdjustment:
		return magnitude, nil
	case models.TransactionUsage, models.TransactionLoss:
		return magnitude.Neg(), nil
	}
	return decimal.Zero, invalid("transaction_type", "unknown transaction type")
}

// ApplyTransaction validates in against the item's committed state and
// commits the transaction row together with the new quantity. Conflicts are
// retried up to MaxRetries times, re-validating each time; all other errors
// are returned immediately. On error nothing was written.
func (l *Ledger) ApplyTransaction(ctx context.Context, farmID uint, itemID string, in TransactionInput, hooks ...CommitHook) (*models.InventoryTransaction, *models.InventoryItem, error) {
	delta, err := SignedDelta(in.Type, in.Magnitude)
	if err != nil {
		return nil, nil, err
	}
	if in.Unit != "" && !in.Unit.Valid() {
		return nil, nil, invalid("unit", "unknown unit")
	}
	if in.Cost != nil && in.Cost.IsNegative() {
		return nil, nil, invalid("cost", "cannot be negative")
	}
	if err := checkStorablePtr("cost", in.Cost); err != nil {
		return nil, nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		txn, item, err := l.applyOnce(ctx, farmID, itemID, in, delta, hooks)
		if err == nil {
			l.logger.WithFields(logrus.Fields{
				"module":   moduleName,
				"farm_id":  farmID,
				"item_id":  itemID,
				"txn_id":   txn.ID,
				"type":     txn.Type,
				"delta":    txn.QuantityDelta.String(),
				"quantity": item.Quantity.String(),
			}).Debug("inventory transaction applied")
			return txn, item, nil
		}
		if !IsConflict(err) || ctx.Err() != nil {
			return nil, nil, err
		}
		lastErr = err
		l.logger.WithFields(logrus.Fields{
			"module":  moduleName,
			"item_id": itemID,
			"attempt": attempt + 1,
		}).WithError(err).Warn("inventory transaction conflict")
	}
	return nil, nil, lastErr
}

func (l *Ledger) applyOnce(ctx context.Context, farmID uint, itemID string, in TransactionInput, delta decimal.Decimal, hooks []CommitHook) (*models.InventoryTransaction, *models.InventoryItem, error) {
	unlock, err := l.locker.Acquire(ctx, ItemLockKey(itemID))
	if err != nil {
		if errors.Is(err, ErrLockNotObtained) {
			return nil, nil, &ConflictError{ItemID: itemID, Reason: "item is busy, try again", Err: err}
		}
		return nil, nil, persistence("acquire item lock", err)
	}
	defer unlock()

	var (
		txn  *models.InventoryTransaction
		item *models.InventoryItem
	)
	err = l.store.Atomic(ctx, func(tx Tx) error {
		current, err := tx.LockItem(ctx, farmID, itemID)
		if err != nil {
			return err
		}
		if in.Unit != "" && in.Unit != current.Unit {
			return invalid("unit", "must match the item unit "+string(current.Unit))
		}
		if delta.IsNegative() && in.Magnitude.GreaterThan(current.Quantity) {
			return &InsufficientStockError{
				ItemID:    current.ID,
				Requested: in.Magnitude,
				Available: current.Quantity,
				Unit:      current.Unit,
			}
		}

		newQuantity := current.Quantity.Add(delta)
		if err := CheckStorable("quantity", newQuantity); err != nil {
			return err
		}
		now := l.now()
		if err := tx.CommitQuantity(ctx, current, newQuantity, current.Version); err != nil {
			return err
		}

		t := &models.InventoryTransaction{
			ID:              newTransactionID(),
			InventoryItemID: current.ID,
			FarmID:          current.FarmID,
			Type:            in.Type,
			QuantityDelta:   delta,
			QuantityAfter:   newQuantity,
			Cost:            in.Cost,
			SupplierID:      in.SupplierID,
			Notes:           in.Notes,
			PerformedBy:     in.PerformedBy,
			CreatedAt:       now,
		}
		if err := tx.AppendTransaction(ctx, t); err != nil {
			return err
		}

		for _, hook := range hooks {
			if err := hook(ctx, tx, t, current); err != nil {
				return err
			}
		}

		txn, item = t, current
		return nil
	})
	if err != nil {
		if !isLedgerError(err) {
			err = persistence("apply inventory transaction", err)
		}
		return nil, nil, err
	}
	return txn, item, nil
}
