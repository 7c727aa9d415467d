// Package feeding records feedings. A feeding drawn from inventory debits
// the item through the ledger, and the record is written inside that same
// storage transaction.
package feeding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, record *models.FeedingRecord) error
	List(ctx context.Context, farmID uint, page ledger.Page) ([]models.FeedingRecord, int64, error)
}

type RecordInput struct {
	AnimalID        *uint
	GroupID         *uint
	FeedType        string
	Quantity        decimal.Decimal
	Unit            models.Unit
	FedAt           *time.Time
	InventoryItemID string
	Notes           string
	RecordedBy      uint
}

type Service struct {
	ledger *ledger.Ledger
	repo   Repository
	now    func() time.Time
}

func NewService(l *ledger.Ledger, repo Repository) *Service {
	return &Service{
		ledger: l,
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Record stores a feeding. With InventoryItemID set, a usage transaction of
// Quantity is applied to the item and the record commits with it: both
// persist or neither does. The returned transaction is nil otherwise.
func (s *Service) Record(ctx context.Context, farmID uint, in RecordInput) (*models.FeedingRecord, *models.InventoryTransaction, error) {
	record, err := s.buildRecord(farmID, in)
	if err != nil {
		return nil, nil, err
	}

	if in.InventoryItemID == "" {
		if err := s.repo.Create(ctx, record); err != nil {
			return nil, nil, &ledger.PersistenceError{Op: "insert feeding record", Err: err}
		}
		return record, nil, nil
	}

	itemID := in.InventoryItemID
	txn, _, err := s.ledger.ApplyTransaction(ctx, farmID, itemID, ledger.TransactionInput{
		Type:        models.TransactionUsage,
		Magnitude:   in.Quantity,
		Unit:        in.Unit,
		Notes:       fmt.Sprintf("feeding: %s", record.FeedType),
		PerformedBy: in.RecordedBy,
	}, func(ctx context.Context, tx ledger.Tx, txn *models.InventoryTransaction, _ *models.InventoryItem) error {
		// A retried attempt starts from a fresh row.
		r := *record
		r.ID = 0
		r.InventoryItemID = &itemID
		r.InventoryTransactionID = &txn.ID
		if err := tx.Create(ctx, &r); err != nil {
			return err
		}
		*record = r
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return record, txn, nil
}

func (s *Service) List(ctx context.Context, farmID uint, page ledger.Page) ([]models.FeedingRecord, int64, error) {
	records, total, err := s.repo.List(ctx, farmID, page.Normalize())
	if err != nil {
		return nil, 0, &ledger.PersistenceError{Op: "list feeding records", Err: err}
	}
	return records, total, nil
}

func (s *Service) buildRecord(farmID uint, in RecordInput) (*models.FeedingRecord, error) {
	feedType := strings.TrimSpace(in.FeedType)
	switch {
	case feedType == "":
		return nil, &ledger.ValidationError{Field: "feed_type", Message: "is required"}
	case !in.Quantity.IsPositive():
		return nil, &ledger.ValidationError{Field: "quantity", Message: "invalid quantity"}
	case !in.Unit.Valid():
		return nil, &ledger.ValidationError{Field: "unit", Message: "unknown unit"}
	}
	if err := ledger.CheckStorable("quantity", in.Quantity); err != nil {
		return nil, err
	}

	now := s.now()
	fedAt := now
	if in.FedAt != nil {
		fedAt = in.FedAt.UTC()
	}
	return &models.FeedingRecord{
		FarmID:     farmID,
		AnimalID:   in.AnimalID,
		GroupID:    in.GroupID,
		FeedType:   feedType,
		Quantity:   in.Quantity,
		Unit:       in.Unit,
		FedAt:      fedAt,
		Notes:      strings.TrimSpace(in.Notes),
		RecordedBy: in.RecordedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
