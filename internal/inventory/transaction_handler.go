package inventory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/auth"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/config"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	maxIdempotencyKey = 128
)

// POST /api/farms/:farmId/inventory/:itemId/transactions
func (h *Handlers) ApplyTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ApplyTransactionRequest
		if err := utils.BindJSON(c, &body); err != nil {
			return err
		}
		farmID := auth.ScopedFarmID(c)
		itemID := c.Params("itemId")

		key := strings.TrimSpace(c.Get(idempotencyHeader))
		if len(key) > maxIdempotencyKey {
			return utils.NewAPIError(fiber.StatusBadRequest, utils.CodeBadRequest, "Idempotency-Key is too long")
		}
		if key != "" && h.Idempotency != nil {
			return h.applyIdempotent(c, fmt.Sprintf("%d:%s:%s", farmID, itemID, key), farmID, itemID, &body)
		}

		resp, err := h.applyTransaction(c, farmID, itemID, &body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

func (h *Handlers) applyIdempotent(c *fiber.Ctx, scoped string, farmID uint, itemID string, body *ApplyTransactionRequest) error {
	ctx := c.UserContext()
	fingerprint, err := requestFingerprint(body)
	if err != nil {
		return err
	}

	reserved, err := h.Idempotency.Reserve(ctx, scoped, fingerprint)
	if err != nil {
		return err
	}
	if !reserved {
		return h.replay(c, scoped, fingerprint)
	}

	resp, err := h.applyTransaction(c, farmID, itemID, body)
	if err != nil {
		h.releaseKey(c, scoped)
		return err
	}

	// A response that cannot be recorded frees the key instead of leaving
	// it pending until the TTL.
	encoded, err := json.Marshal(resp)
	if err == nil {
		err = h.Idempotency.Complete(ctx, scoped, fingerprint, encoded)
	}
	if err != nil {
		config.LogError(h.Logger, moduleName, "ApplyTransactionHandler", "store idempotent response", logrus.Fields{"key": scoped}, err)
		h.releaseKey(c, scoped)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handlers) releaseKey(c *fiber.Ctx, scoped string) {
	if err := h.Idempotency.Release(c.UserContext(), scoped); err != nil {
		config.LogError(h.Logger, moduleName, "ApplyTransactionHandler", "release idempotency key", logrus.Fields{"key": scoped}, err)
	}
}

func (h *Handlers) replay(c *fiber.Ctx, scoped, fingerprint string) error {
	rec, err := h.Idempotency.Lookup(c.UserContext(), scoped)
	if err != nil {
		return err
	}
	if rec != nil && rec.Fingerprint != fingerprint {
		return idempotencyMismatch()
	}
	if rec == nil || rec.Pending() {
		return utils.NewAPIError(fiber.StatusConflict, utils.CodeConflict, "a request with this Idempotency-Key is still in progress")
	}
	c.Set(replayedHeader, "true")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusCreated).Send(rec.Response)
}

func idempotencyMismatch() error {
	return utils.NewAPIError(fiber.StatusUnprocessableEntity, utils.CodeIdempotencyMismatch,
		"Idempotency-Key was already used with a different request")
}

func (h *Handlers) applyTransaction(c *fiber.Ctx, farmID uint, itemID string, body *ApplyTransactionRequest) (*ApplyTransactionResponse, error) {
	if err := h.checkSupplier(c.UserContext(), farmID, body.SupplierID); err != nil {
		return nil, LedgerError(h.Logger, "ApplyTransactionHandler", err)
	}

	txn, item, err := h.Ledger.ApplyTransaction(c.UserContext(), farmID, itemID, ledger.TransactionInput{
		Type:        models.TransactionType(body.TransactionType),
		Magnitude:   *body.Quantity,
		Unit:        models.Unit(strings.ToLower(body.Unit)),
		Cost:        body.Cost,
		SupplierID:  body.SupplierID,
		Notes:       strings.TrimSpace(body.Notes),
		PerformedBy: auth.UserID(c),
	})
	if err != nil {
		return nil, LedgerError(h.Logger, "ApplyTransactionHandler", err)
	}

	resp := &ApplyTransactionResponse{
		Transaction: toTransactionResponse(txn),
		Item:        toItemResponse(item),
	}
	h.audit(c, entityTransaction, txn.ID, models.AuditActionCreate,
		fmt.Sprintf("%s of %s %s on %s", txn.Type, body.Quantity.String(), item.Unit, item.Name),
		nil, resp.Transaction)
	return resp, nil
}

// GET /api/farms/:farmId/inventory/:itemId/transactions?page=&pageSize=
func (h *Handlers) TransactionHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := parsePage(c)
		if err != nil {
			return err
		}

		txns, total, err := h.Ledger.TransactionHistory(c.UserContext(), auth.ScopedFarmID(c), c.Params("itemId"), page)
		if err != nil {
			return LedgerError(h.Logger, "TransactionHistoryHandler", err)
		}

		data := make([]TransactionResponse, 0, len(txns))
		for i := range txns {
			data = append(data, toTransactionResponse(&txns[i]))
		}
		return c.JSON(ListResponse[TransactionResponse]{
			Data:     data,
			Total:    total,
			Page:     page.Number,
			PageSize: page.Size,
		})
	}
}
