// Package ledger owns inventory quantities. Every change to
// InventoryItem.Quantity goes through Ledger.ApplyTransaction, which records
// an append-only InventoryTransaction in the same storage transaction.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const moduleName = "ledger"

type Options struct {
	// MaxRetries bounds how often a conflicting ApplyTransaction is
	// re-run against fresh state before the conflict is returned.
	MaxRetries int
	Logger     *logrus.Logger
	Clock      func() time.Time
}

type Ledger struct {
	store      Store
	locker     Locker
	maxRetries int
	logger     *logrus.Logger
	now        func() time.Time
}

func New(store Store, locker Locker, opts Options) *Ledger {
	l := &Ledger{
		store:      store,
		locker:     locker,
		maxRetries: opts.MaxRetries,
		logger:     opts.Logger,
		now:        opts.Clock,
	}
	if l.maxRetries < 0 {
		l.maxRetries = 0
	}
	if l.logger == nil {
		l.logger = logrus.New()
	}
	if l.now == nil {
		l.now = func() time.Time { return time.Now().UTC() }
	}
	return l
}

func newItemID() string {
	return uuid.NewString()
}

// Transaction ids are UUIDv7 so that id order follows creation order.
func newTransactionID() string {
	return uuid.Must(uuid.NewV7()).String()
}
