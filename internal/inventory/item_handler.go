package inventory

import (
	"fmt"
	"strings"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/auth"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// POST /api/farms/:farmId/inventory
func (h *Handlers) CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemRequest
		if err := utils.BindJSON(c, &body); err != nil {
			return err
		}
		farmID := auth.ScopedFarmID(c)

		expiry, err := parseDate("expiry_date", body.ExpiryDate)
		if err != nil {
			return LedgerError(h.Logger, "CreateItemHandler", err)
		}
		if err := h.checkSupplier(c.UserContext(), farmID, body.SupplierID); err != nil {
			return LedgerError(h.Logger, "CreateItemHandler", err)
		}

		item, err := h.Ledger.CreateItem(c.UserContext(), farmID, ledger.NewItem{
			Name:              body.Name,
			Category:          models.ItemCategory(body.Category),
			Quantity:          *body.Quantity,
			Unit:              models.Unit(strings.ToLower(body.Unit)),
			CostPerUnit:       body.CostPerUnit,
			SupplierID:        body.SupplierID,
			ExpiryDate:        expiry,
			LowStockThreshold: body.LowStockThreshold,
			Notes:             body.Notes,
		})
		if err != nil {
			return LedgerError(h.Logger, "CreateItemHandler", err)
		}

		resp := toItemResponse(item)
		h.audit(c, entityItem, item.ID, models.AuditActionCreate,
			fmt.Sprintf("Created inventory item %s (%s %s)", item.Name, item.Quantity, item.Unit), nil, resp)

		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/farms/:farmId/inventory?category=&search=&page=&pageSize=&sortBy=&sortOrder=
func (h *Handlers) ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseItemQuery(c)
		if err != nil {
			return err
		}

		items, total, err := h.Ledger.ListItems(c.UserContext(), auth.ScopedFarmID(c), q)
		if err != nil {
			return LedgerError(h.Logger, "ListItemsHandler", err)
		}

		return c.JSON(ListResponse[ItemResponse]{
			Data:     toItemResponses(items),
			Total:    total,
			Page:     q.Page.Number,
			PageSize: q.Page.Size,
		})
	}
}

// GET /api/farms/:farmId/inventory/low-stock?page=&pageSize=
func (h *Handlers) LowStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := parsePage(c)
		if err != nil {
			return err
		}

		items, total, err := h.Ledger.LowStockItems(c.UserContext(), auth.ScopedFarmID(c), page)
		if err != nil {
			return LedgerError(h.Logger, "LowStockHandler", err)
		}

		return c.JSON(ListResponse[ItemResponse]{
			Data:     toItemResponses(items),
			Total:    total,
			Page:     page.Number,
			PageSize: page.Size,
		})
	}
}

// GET /api/farms/:farmId/inventory/:itemId
func (h *Handlers) GetItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		item, err := h.Ledger.GetItem(c.UserContext(), auth.ScopedFarmID(c), c.Params("itemId"))
		if err != nil {
			return LedgerError(h.Logger, "GetItemHandler", err)
		}
		return c.JSON(toItemResponse(item))
	}
}

// PUT /api/farms/:farmId/inventory/:itemId
func (h *Handlers) UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateItemRequest
		if err := utils.BindJSON(c, &body); err != nil {
			return err
		}
		if body.Quantity != nil {
			return &utils.APIError{
				Status:  fiber.StatusBadRequest,
				Code:    utils.CodeValidation,
				Message: "quantity can only change through inventory transactions",
				Fields:  map[string]string{"quantity": "read_only"},
			}
		}

		farmID := auth.ScopedFarmID(c)
		itemID := c.Params("itemId")

		patch := ledger.ItemPatch{
			Name:              body.Name,
			CostPerUnit:       body.CostPerUnit,
			SupplierID:        body.SupplierID,
			LowStockThreshold: body.LowStockThreshold,
			Notes:             body.Notes,
		}
		if body.Category != nil {
			category := models.ItemCategory(*body.Category)
			patch.Category = &category
		}
		if body.Unit != nil {
			unit := models.Unit(strings.ToLower(*body.Unit))
			patch.Unit = &unit
		}
		if body.ExpiryDate != nil {
			expiry, err := parseDate("expiry_date", *body.ExpiryDate)
			if err != nil {
				return LedgerError(h.Logger, "UpdateItemHandler", err)
			}
			patch.ExpiryDate = expiry
			patch.ClearExpiryDate = expiry == nil
		}

		nulls, err := nullFields(c.Body(), "cost_per_unit", "supplier_id", "expiry_date", "low_stock_threshold")
		if err != nil {
			return utils.NewAPIError(fiber.StatusBadRequest, utils.CodeBadRequest, "invalid request body")
		}
		patch.ClearCostPerUnit = nulls["cost_per_unit"]
		patch.ClearSupplierID = nulls["supplier_id"]
		patch.ClearExpiryDate = patch.ClearExpiryDate || nulls["expiry_date"]
		patch.ClearLowStockThreshold = nulls["low_stock_threshold"]
		if err := h.checkSupplier(c.UserContext(), farmID, body.SupplierID); err != nil {
			return LedgerError(h.Logger, "UpdateItemHandler", err)
		}

		before, err := h.Ledger.GetItem(c.UserContext(), farmID, itemID)
		if err != nil {
			return LedgerError(h.Logger, "UpdateItemHandler", err)
		}
		item, err := h.Ledger.UpdateItemMetadata(c.UserContext(), farmID, itemID, patch)
		if err != nil {
			return LedgerError(h.Logger, "UpdateItemHandler", err)
		}

		resp := toItemResponse(item)
		h.audit(c, entityItem, item.ID, models.AuditActionUpdate,
			fmt.Sprintf("Updated inventory item %s", item.Name), toItemResponse(before), resp)

		return c.JSON(resp)
	}
}

// DELETE /api/farms/:farmId/inventory/:itemId
func (h *Handlers) DeleteItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmID := auth.ScopedFarmID(c)
		itemID := c.Params("itemId")

		before, err := h.Ledger.GetItem(c.UserContext(), farmID, itemID)
		if err != nil {
			return LedgerError(h.Logger, "DeleteItemHandler", err)
		}
		if err := h.Ledger.DeleteItem(c.UserContext(), farmID, itemID); err != nil {
			return LedgerError(h.Logger, "DeleteItemHandler", err)
		}

		h.audit(c, entityItem, itemID, models.AuditActionArchive,
			fmt.Sprintf("Archived inventory item %s", before.Name), toItemResponse(before), nil)

		return c.SendStatus(fiber.StatusNoContent)
	}
}
