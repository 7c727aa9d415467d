package ledger

import (
	"context"
	"time"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"

	"github.com/shopspring/decimal"
)

// Store is the durable side of the ledger. Implementations report failures
// using the error types in errors.go.
type Store interface {
	CreateItem(ctx context.Context, item *models.InventoryItem) error
	// GetItem ignores archived items.
	GetItem(ctx context.Context, farmID uint, itemID string) (*models.InventoryItem, error)
	ListItems(ctx context.Context, farmID uint, q ItemQuery) ([]models.InventoryItem, int64, error)
	// UpdateItemMetadata persists every column except quantity and
	// initial_quantity, provided the stored version still equals
	// expectedVersion. It bumps item.Version on success.
	UpdateItemMetadata(ctx context.Context, item *models.InventoryItem, expectedVersion int64) error
	ArchiveItem(ctx context.Context, farmID uint, itemID string, at time.Time) error
	HasTransactions(ctx context.Context, itemID string) (bool, error)
	// ListTransactions includes archived items, newest first.
	ListTransactions(ctx context.Context, farmID uint, itemID string, page Page) ([]models.InventoryTransaction, int64, error)
	ListLowStock(ctx context.Context, farmID uint, page Page) ([]models.InventoryItem, int64, error)

	// Atomic runs fn inside one storage transaction. Nothing fn wrote is
	// visible to readers unless fn returns nil and the commit succeeds.
	// Errors returned by fn are passed through unchanged.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write surface available inside Store.Atomic.
type Tx interface {
	// LockItem reads a non-archived item and holds it against other
	// writers until the surrounding transaction ends.
	LockItem(ctx context.Context, farmID uint, itemID string) (*models.InventoryItem, error)
	// CommitQuantity sets the item's quantity when its stored version still
	// equals expectedVersion, bumps the version, and updates item in place.
	// A version mismatch is a *ConflictError.
	CommitQuantity(ctx context.Context, item *models.InventoryItem, quantity decimal.Decimal, expectedVersion int64) error
	AppendTransaction(ctx context.Context, txn *models.InventoryTransaction) error
	// Create inserts a record owned by another subsystem, e.g. a feeding
	// record that must commit together with its debit.
	Create(ctx context.Context, record any) error
}
