package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps the ledger in a SQL database. Quantity writes happen only
// in CommitQuantity, under a row lock and a version check.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// CreateItem holds a shared lock on the farm row while inserting, so an
// item is never created for a farm that is being deleted.
func (s *GormStore) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var farm models.Farm
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Select("id").
			First(&farm, item.FarmID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "farm", ID: fmt.Sprint(item.FarmID)}
		}
		if err != nil {
			return persistence("lock farm", err)
		}
		if err := tx.Create(item).Error; err != nil {
			return persistence("create inventory item", err)
		}
		return nil
	})
}

func (s *GormStore) GetItem(ctx context.Context, farmID uint, itemID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.WithContext(ctx).
		Where("id = ? AND farm_id = ? AND archived_at IS NULL", itemID, farmID).
		First(&item).Error
	if err != nil {
		return nil, itemLookupError(itemID, err)
	}
	return &item, nil
}

func (s *GormStore) ListItems(ctx context.Context, farmID uint, q ItemQuery) ([]models.InventoryItem, int64, error) {
	dbq := s.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("farm_id = ? AND archived_at IS NULL", farmID)
	if q.Category != "" {
		dbq = dbq.Where("category = ?", q.Category)
	}
	if q.Search != "" {
		dbq = dbq.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
	}

	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return nil, 0, persistence("count inventory items", err)
	}

	order := fmt.Sprintf("%s %s, id ASC", q.SortColumn(), strings.ToUpper(string(q.SortOrder)))
	var items []models.InventoryItem
	if err := dbq.Order(order).Offset(q.Page.Offset()).Limit(q.Page.Size).Find(&items).Error; err != nil {
		return nil, 0, persistence("list inventory items", err)
	}
	return items, total, nil
}

func (s *GormStore) UpdateItemMetadata(ctx context.Context, item *models.InventoryItem, expectedVersion int64) error {
	res := s.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ? AND farm_id = ? AND version = ? AND archived_at IS NULL", item.ID, item.FarmID, expectedVersion).
		Updates(map[string]any{
			"name":                item.Name,
			"category":            item.Category,
			"unit":                item.Unit,
			"cost_per_unit":       item.CostPerUnit,
			"supplier_id":         item.SupplierID,
			"expiry_date":         item.ExpiryDate,
			"low_stock_threshold": item.LowStockThreshold,
			"notes":               item.Notes,
			"version":             gorm.Expr("version + 1"),
			"updated_at":          item.UpdatedAt,
		})
	if res.Error != nil {
		return persistence("update inventory item", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetItem(ctx, item.FarmID, item.ID); err != nil {
			return err
		}
		return &ConflictError{ItemID: item.ID, Reason: "item was modified concurrently"}
	}
	item.Version = expectedVersion + 1
	return nil
}

func (s *GormStore) ArchiveItem(ctx context.Context, farmID uint, itemID string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ? AND farm_id = ? AND archived_at IS NULL", itemID, farmID).
		Updates(map[string]any{
			"archived_at": at,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  at,
		})
	if res.Error != nil {
		return persistence("archive inventory item", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "inventory item", ID: itemID}
	}
	return nil
}

func (s *GormStore) HasTransactions(ctx context.Context, itemID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.InventoryTransaction{}).
		Where("inventory_item_id = ?", itemID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, persistence("count inventory transactions", err)
	}
	return count > 0, nil
}

func (s *GormStore) ListTransactions(ctx context.Context, farmID uint, itemID string, page Page) ([]models.InventoryTransaction, int64, error) {
	var owner int64
	if err := s.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ? AND farm_id = ?", itemID, farmID).
		Count(&owner).Error; err != nil {
		return nil, 0, persistence("find inventory item", err)
	}
	if owner == 0 {
		return nil, 0, &NotFoundError{Entity: "inventory item", ID: itemID}
	}

	dbq := s.db.WithContext(ctx).Model(&models.InventoryTransaction{}).
		Where("inventory_item_id = ? AND farm_id = ?", itemID, farmID)

	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return nil, 0, persistence("count inventory transactions", err)
	}

	var txns []models.InventoryTransaction
	if err := dbq.Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&txns).Error; err != nil {
		return nil, 0, persistence("list inventory transactions", err)
	}
	return txns, total, nil
}

func (s *GormStore) ListLowStock(ctx context.Context, farmID uint, page Page) ([]models.InventoryItem, int64, error) {
	dbq := s.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("farm_id = ? AND archived_at IS NULL", farmID).
		Where("low_stock_threshold IS NOT NULL AND quantity <= low_stock_threshold")

	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return nil, 0, persistence("count low stock items", err)
	}

	var items []models.InventoryItem
	if err := dbq.Order("name ASC, id ASC").Offset(page.Offset()).Limit(page.Size).Find(&items).Error; err != nil {
		return nil, 0, persistence("list low stock items", err)
	}
	return items, total, nil
}

func (s *GormStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&gormTx{db: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return persistence("commit inventory transaction", err)
	}
	return nil
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) LockItem(ctx context.Context, farmID uint, itemID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND farm_id = ? AND archived_at IS NULL", itemID, farmID).
		First(&item).Error
	if err != nil {
		return nil, itemLookupError(itemID, err)
	}
	return &item, nil
}

func (t *gormTx) CommitQuantity(ctx context.Context, item *models.InventoryItem, quantity decimal.Decimal, expectedVersion int64) error {
	now := time.Now().UTC()
	res := t.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ? AND version = ?", item.ID, expectedVersion).
		Updates(map[string]any{
			"quantity":   quantity,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if res.Error != nil {
		return persistence("update inventory quantity", res.Error)
	}
	if res.RowsAffected == 0 {
		return &ConflictError{ItemID: item.ID, Reason: "item was modified concurrently"}
	}
	item.Quantity = quantity
	item.Version = expectedVersion + 1
	item.UpdatedAt = now
	return nil
}

func (t *gormTx) AppendTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	if err := t.db.WithContext(ctx).Create(txn).Error; err != nil {
		return persistence("insert inventory transaction", err)
	}
	return nil
}

func (t *gormTx) Create(ctx context.Context, record any) error {
	if err := t.db.WithContext(ctx).Create(record).Error; err != nil {
		return persistence(fmt.Sprintf("insert %T", record), err)
	}
	return nil
}

func itemLookupError(itemID string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: "inventory item", ID: itemID}
	}
	return persistence("find inventory item", err)
}
