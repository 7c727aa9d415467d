package inventory

import (
	"context"
	"strings"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/audit"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/auth"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	entityItem        = "inventory_item"
	entityTransaction = "inventory_transaction"
)

type Auditor interface {
	Write(ctx context.Context, opts audit.LogOptions)
}

// SupplierExists reports whether supplierID belongs to farmID.
type SupplierExists func(ctx context.Context, farmID, supplierID uint) (bool, error)

type Handlers struct {
	Ledger    *ledger.Ledger
	Audit     Auditor
	Suppliers SupplierExists
	// Idempotency is optional; without it Idempotency-Key is ignored.
	Idempotency IdempotencyStore
	Logger      *logrus.Logger
}

// Register mounts the inventory routes on a router already scoped by
// auth.RequireFarmAccess.
func (h *Handlers) Register(r fiber.Router) {
	r.Post("/", h.CreateItemHandler())
	r.Get("/", h.ListItemsHandler())
	r.Get("/low-stock", h.LowStockHandler())
	r.Get("/export", h.ExportHandler())
	r.Get("/:itemId", h.GetItemHandler())
	r.Put("/:itemId", h.UpdateItemHandler())
	r.Delete("/:itemId", h.DeleteItemHandler())
	r.Post("/:itemId/transactions", h.ApplyTransactionHandler())
	r.Get("/:itemId/transactions", h.TransactionHistoryHandler())
}

func (h *Handlers) audit(c *fiber.Ctx, entityType, entityID string, action models.AuditAction, desc string, before, after any) {
	if h.Audit == nil {
		return
	}
	farmID := auth.ScopedFarmID(c)
	h.Audit.Write(c.UserContext(), audit.LogOptions{
		FarmID:      &farmID,
		UserID:      auth.UserID(c),
		UserName:    auth.UserName(c),
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}

func (h *Handlers) checkSupplier(ctx context.Context, farmID uint, supplierID *uint) error {
	if supplierID == nil || h.Suppliers == nil {
		return nil
	}
	ok, err := h.Suppliers(ctx, farmID, *supplierID)
	if err != nil {
		return err
	}
	if !ok {
		return &ledger.ValidationError{Field: "supplier_id", Message: "unknown supplier"}
	}
	return nil
}

func parsePage(c *fiber.Ctx) (ledger.Page, error) {
	number, size, err := utils.ParsePage(c)
	if err != nil {
		return ledger.Page{}, err
	}
	return ledger.Page{Number: number, Size: size}.Normalize(), nil
}

func parseItemQuery(c *fiber.Ctx) (ledger.ItemQuery, error) {
	page, err := parsePage(c)
	if err != nil {
		return ledger.ItemQuery{}, err
	}
	return ledger.ItemQuery{
		Category:  models.ItemCategory(strings.ToLower(c.Query("category"))),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: ledger.SortOrder(strings.ToLower(c.Query("sortOrder"))),
		Page:      page,
	}, nil
}
