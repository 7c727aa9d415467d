package ledger

import (
	"context"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
)

// TransactionHistory returns committed transactions of an item, newest
// first (created_at desc, id desc). Archived items keep their history.
func (l *Ledger) TransactionHistory(ctx context.Context, farmID uint, itemID string, page Page) ([]models.InventoryTransaction, int64, error) {
	return l.store.ListTransactions(ctx, farmID, itemID, page.Normalize())
}

// LowStockItems returns the farm's items for which IsLowStock holds.
func (l *Ledger) LowStockItems(ctx context.Context, farmID uint, page Page) ([]models.InventoryItem, int64, error) {
	return l.store.ListLowStock(ctx, farmID, page.Normalize())
}
