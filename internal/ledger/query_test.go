package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger/ledgertest"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
)

func TestTransactionHistory_NewestFirst(t *testing.T) {
	store := ledgertest.NewStore()
	fixed := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	l := ledger.New(store, ledger.NewLocalLocker(time.Second), ledger.Options{
		Clock: func() time.Time { return fixed },
	})
	item := createItem(t, l, 100, nil)

	var ids []string
	for i := 1; i <= 5; i++ {
		txn, _, err := l.ApplyTransaction(context.Background(), farmID, item.ID, ledger.TransactionInput{
			Type:      models.TransactionUsage,
			Magnitude: dec(int64(i)),
		})
		if err != nil {
			t.Fatalf("ApplyTransaction: %v", err)
		}
		ids = append(ids, txn.ID)
	}

	history, total, err := l.TransactionHistory(context.Background(), farmID, item.ID, ledger.Page{Number: 1, Size: 2})
	if err != nil {
		t.Fatalf("TransactionHistory: %v", err)
	}
	if total != 5 || len(history) != 2 {
		t.Fatalf("expected 2 of 5, got %d of %d", len(history), total)
	}
	// Identical timestamps fall back to id order.
	if history[0].ID != ids[4] || history[1].ID != ids[3] {
		t.Fatalf("history not newest first: %s, %s", history[0].ID, history[1].ID)
	}
	if !history[0].QuantityAfter.Equal(dec(85)) {
		t.Fatalf("expected quantity after 85, got %s", history[0].QuantityAfter)
	}

	last, _, _ := l.TransactionHistory(context.Background(), farmID, item.ID, ledger.Page{Number: 3, Size: 2})
	if len(last) != 1 || last[0].ID != ids[0] {
		t.Fatalf("last page wrong: %+v", last)
	}
	empty, _, _ := l.TransactionHistory(context.Background(), farmID, item.ID, ledger.Page{Number: 9, Size: 2})
	if len(empty) != 0 {
		t.Fatalf("expected empty page past the end")
	}
}

func TestTransactionHistory_UnknownItem(t *testing.T) {
	l, _, _ := newLedger(t, 0)
	item := createItem(t, l, 1, nil)

	if _, _, err := l.TransactionHistory(context.Background(), farmID, "nope", ledger.Page{}); !ledger.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, _, err := l.TransactionHistory(context.Background(), farmID+1, item.ID, ledger.Page{}); !ledger.IsNotFound(err) {
		t.Fatalf("expected not found for another farm, got %v", err)
	}
}

func TestLowStockItems(t *testing.T) {
	l, _, _ := newLedger(t, 0)
	ctx := context.Background()

	atThreshold := createItem(t, l, 20, decPtr(20))
	above := createItem(t, l, 21, decPtr(20))
	createItem(t, l, 0, nil)
	archived := createItem(t, l, 1, decPtr(5))
	if err := l.DeleteItem(ctx, farmID, archived.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	items, total, err := l.LowStockItems(ctx, farmID, ledger.Page{})
	if err != nil {
		t.Fatalf("LowStockItems: %v", err)
	}
	if total != 1 || items[0].ID != atThreshold.ID {
		t.Fatalf("expected only the item at its threshold, got %d items", total)
	}

	apply(t, l, above.ID, models.TransactionUsage, 1)
	_, total, _ = l.LowStockItems(ctx, farmID, ledger.Page{})
	if total != 2 {
		t.Fatalf("usage to the threshold should flag the item, got %d", total)
	}
}
