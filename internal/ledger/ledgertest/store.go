// Package ledgertest provides an in-memory ledger.Store for tests.
package ledgertest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"

	"github.com/shopspring/decimal"
)

// Store implements ledger.Store in memory. Atomic holds the store mutex for
// the whole callback and publishes staged writes only when it returns nil.
type Store struct {
	mu      sync.Mutex
	items   map[string]models.InventoryItem
	txns    []models.InventoryTransaction
	records []any

	interfere func(stored *models.InventoryItem)
	failNext  error
}

func NewStore() *Store {
	return &Store{items: make(map[string]models.InventoryItem)}
}

// Interfere registers fn to run against the committed copy of an item right
// before each CommitQuantity version check, simulating a concurrent writer.
func (s *Store) Interfere(fn func(stored *models.InventoryItem)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interfere = fn
}

// FailNextCreate makes the next Tx.Create return err.
func (s *Store) FailNextCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Item returns the committed item, archived or not.
func (s *Store) Item(id string) (models.InventoryItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	return it, ok
}

// Transactions returns the committed transactions of an item in insertion
// order.
func (s *Store) Transactions(itemID string) []models.InventoryTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.InventoryTransaction
	for _, t := range s.txns {
		if t.InventoryItemID == itemID {
			out = append(out, t)
		}
	}
	return out
}

// Records returns everything committed through Tx.Create.
func (s *Store) Records() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.records...)
}

func (s *Store) CreateItem(_ context.Context, item *models.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; ok {
		return &ledger.PersistenceError{Op: "create inventory item", Err: fmt.Errorf("duplicate id %s", item.ID)}
	}
	s.items[item.ID] = *item
	return nil
}

func (s *Store) GetItem(_ context.Context, farmID uint, itemID string) (*models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok || it.FarmID != farmID || it.ArchivedAt != nil {
		return nil, &ledger.NotFoundError{Entity: "inventory item", ID: itemID}
	}
	return &it, nil
}

func (s *Store) ListItems(_ context.Context, farmID uint, q ledger.ItemQuery) ([]models.InventoryItem, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(q.Search)
	var matched []models.InventoryItem
	for _, it := range s.items {
		if it.FarmID != farmID || it.ArchivedAt != nil {
			continue
		}
		if q.Category != "" && it.Category != q.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) {
			continue
		}
		matched = append(matched, it)
	}

	col := q.SortColumn()
	desc := q.SortOrder == ledger.SortDesc
	sort.Slice(matched, func(i, j int) bool {
		c := compareColumn(col, &matched[i], &matched[j])
		if c == 0 {
			return matched[i].ID < matched[j].ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
	return paginate(matched, q.Page), int64(len(matched)), nil
}

func (s *Store) UpdateItemMetadata(_ context.Context, item *models.InventoryItem, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[item.ID]
	if !ok || stored.FarmID != item.FarmID || stored.ArchivedAt != nil {
		return &ledger.NotFoundError{Entity: "inventory item", ID: item.ID}
	}
	if stored.Version != expectedVersion {
		return &ledger.ConflictError{ItemID: item.ID, Reason: "item was modified concurrently"}
	}
	updated := *item
	updated.Quantity = stored.Quantity
	updated.InitialQuantity = stored.InitialQuantity
	updated.Version = expectedVersion + 1
	s.items[item.ID] = updated
	item.Version = updated.Version
	return nil
}

func (s *Store) ArchiveItem(_ context.Context, farmID uint, itemID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok || it.FarmID != farmID || it.ArchivedAt != nil {
		return &ledger.NotFoundError{Entity: "inventory item", ID: itemID}
	}
	it.ArchivedAt = &at
	it.UpdatedAt = at
	it.Version++
	s.items[itemID] = it
	return nil
}

func (s *Store) HasTransactions(_ context.Context, itemID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txns {
		if t.InventoryItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListTransactions(_ context.Context, farmID uint, itemID string, page ledger.Page) ([]models.InventoryTransaction, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok || it.FarmID != farmID {
		return nil, 0, &ledger.NotFoundError{Entity: "inventory item", ID: itemID}
	}

	var matched []models.InventoryTransaction
	for _, t := range s.txns {
		if t.InventoryItemID == itemID {
			matched = append(matched, t)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) ListLowStock(_ context.Context, farmID uint, page ledger.Page) ([]models.InventoryItem, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.InventoryItem
	for _, it := range s.items {
		if it.FarmID != farmID || it.ArchivedAt != nil {
			continue
		}
		if ledger.IsLowStock(&it) {
			matched = append(matched, it)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) Atomic(_ context.Context, fn func(tx ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, items: make(map[string]models.InventoryItem)}
	if err := fn(tx); err != nil {
		return err
	}
	for id, it := range tx.items {
		s.items[id] = it
	}
	s.txns = append(s.txns, tx.txns...)
	s.records = append(s.records, tx.records...)
	return nil
}

type memTx struct {
	store   *Store
	items   map[string]models.InventoryItem
	txns    []models.InventoryTransaction
	records []any
}

func (t *memTx) current(itemID string) (models.InventoryItem, bool) {
	if it, ok := t.items[itemID]; ok {
		return it, true
	}
	it, ok := t.store.items[itemID]
	return it, ok
}

func (t *memTx) LockItem(_ context.Context, farmID uint, itemID string) (*models.InventoryItem, error) {
	it, ok := t.current(itemID)
	if !ok || it.FarmID != farmID || it.ArchivedAt != nil {
		return nil, &ledger.NotFoundError{Entity: "inventory item", ID: itemID}
	}
	return &it, nil
}

func (t *memTx) CommitQuantity(_ context.Context, item *models.InventoryItem, quantity decimal.Decimal, expectedVersion int64) error {
	if t.store.interfere != nil {
		if stored, ok := t.store.items[item.ID]; ok {
			t.store.interfere(&stored)
			t.store.items[item.ID] = stored
		}
	}
	stored, ok := t.current(item.ID)
	if !ok {
		return &ledger.NotFoundError{Entity: "inventory item", ID: item.ID}
	}
	if stored.Version != expectedVersion {
		return &ledger.ConflictError{ItemID: item.ID, Reason: "item was modified concurrently"}
	}
	stored.Quantity = quantity
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = time.Now().UTC()
	t.items[item.ID] = stored

	item.Quantity = stored.Quantity
	item.Version = stored.Version
	item.UpdatedAt = stored.UpdatedAt
	return nil
}

func (t *memTx) AppendTransaction(_ context.Context, txn *models.InventoryTransaction) error {
	t.txns = append(t.txns, *txn)
	return nil
}

func (t *memTx) Create(_ context.Context, record any) error {
	if err := t.store.failNext; err != nil {
		t.store.failNext = nil
		return &ledger.PersistenceError{Op: fmt.Sprintf("insert %T", record), Err: err}
	}
	t.records = append(t.records, record)
	return nil
}

func compareColumn(col string, a, b *models.InventoryItem) int {
	switch col {
	case "category":
		return strings.Compare(string(a.Category), string(b.Category))
	case "quantity":
		return a.Quantity.Cmp(b.Quantity)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "expiry_date":
		return compareTimePtr(a.ExpiryDate, b.ExpiryDate)
	default:
		return strings.Compare(a.Name, b.Name)
	}
}

func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

func paginate[T any](rows []T, page ledger.Page) []T {
	start := page.Offset()
	if start < 0 || start >= len(rows) {
		return []T{}
	}
	end := start + page.Size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
