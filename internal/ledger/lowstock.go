package ledger

import "github.com/Farm-Orbit/farmorb-web-sub000/internal/models"

type StockStatus string

const (
	StockOK  StockStatus = "ok"
	StockLow StockStatus = "low"
)

// IsLowStock is true iff the item has a threshold and its quantity is at or
// below it.
func IsLowStock(item *models.InventoryItem) bool {
	if item == nil || item.LowStockThreshold == nil {
		return false
	}
	return item.Quantity.LessThanOrEqual(*item.LowStockThreshold)
}

func StatusOf(item *models.InventoryItem) StockStatus {
	if IsLowStock(item) {
		return StockLow
	}
	return StockOK
}
