package inventory

import (
	"fmt"
	"time"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/auth"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Inventory"

var exportHeadings = []string{
	"Name", "Category", "Quantity", "Unit", "Low stock threshold",
	"Stock status", "Cost per unit", "Expiry date", "Updated at",
}

// GET /api/farms/:farmId/inventory/export?category=&search=&sortBy=&sortOrder=
func (h *Handlers) ExportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseItemQuery(c)
		if err != nil {
			return err
		}
		farmID := auth.ScopedFarmID(c)

		var items []models.InventoryItem
		q.Page = ledger.Page{Number: 1, Size: ledger.MaxPageSize}
		for {
			batch, total, err := h.Ledger.ListItems(c.UserContext(), farmID, q)
			if err != nil {
				return LedgerError(h.Logger, "ExportHandler", err)
			}
			items = append(items, batch...)
			if len(batch) == 0 || int64(len(items)) >= total {
				break
			}
			q.Page.Number++
		}

		f, err := BuildWorkbook(items)
		if err != nil {
			return err
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return err
		}

		filename := fmt.Sprintf("inventory-farm-%d-%s.xlsx", farmID, time.Now().UTC().Format("20060102"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
		return c.Send(buf.Bytes())
	}
}

// BuildWorkbook writes one row per item below a heading row.
func BuildWorkbook(items []models.InventoryItem) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	for i, heading := range exportHeadings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, heading); err != nil {
			return nil, err
		}
	}

	for i := range items {
		item := &items[i]
		row := []any{
			item.Name,
			string(item.Category),
			item.Quantity.InexactFloat64(),
			string(item.Unit),
			decimalCell(item.LowStockThreshold),
			string(ledger.StatusOf(item)),
			decimalCell(item.CostPerUnit),
			dateCell(item.ExpiryDate),
			item.UpdatedAt.UTC().Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func decimalCell(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	return d.InexactFloat64()
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
