package feeding

import (
	"fmt"
	"strings"
	"time"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/audit"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/auth"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/inventory"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const entityFeedingRecord = "feeding_record"

type CreateFeedingRecordRequest struct {
	AnimalID        *uint            `json:"animal_id" validate:"omitempty,gt=0"`
	GroupID         *uint            `json:"group_id" validate:"omitempty,gt=0"`
	FeedType        string           `json:"feed_type" validate:"required,max=100"`
	Quantity        *decimal.Decimal `json:"quantity" validate:"required"`
	Unit            string           `json:"unit" validate:"required"`
	FedAt           *time.Time       `json:"fed_at"`
	InventoryItemID string           `json:"inventory_item_id" validate:"omitempty,max=36"`
	Notes           string           `json:"notes" validate:"max=500"`
}

type FeedingRecordResponse struct {
	Record      models.FeedingRecord           `json:"record"`
	Transaction *inventory.TransactionResponse `json:"transaction,omitempty"`
}

type Handlers struct {
	Service *Service
	Audit   inventory.Auditor
	Logger  *logrus.Logger
}

func (h *Handlers) Register(r fiber.Router) {
	r.Post("/", h.CreateFeedingRecordHandler())
	r.Get("/", h.ListFeedingRecordsHandler())
}

// POST /api/farms/:farmId/feeding-records
func (h *Handlers) CreateFeedingRecordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateFeedingRecordRequest
		if err := utils.BindJSON(c, &body); err != nil {
			return err
		}
		farmID := auth.ScopedFarmID(c)

		record, txn, err := h.Service.Record(c.UserContext(), farmID, RecordInput{
			AnimalID:        body.AnimalID,
			GroupID:         body.GroupID,
			FeedType:        body.FeedType,
			Quantity:        *body.Quantity,
			Unit:            models.Unit(strings.ToLower(body.Unit)),
			FedAt:           body.FedAt,
			InventoryItemID: strings.TrimSpace(body.InventoryItemID),
			Notes:           body.Notes,
			RecordedBy:      auth.UserID(c),
		})
		if err != nil {
			return inventory.LedgerError(h.Logger, "CreateFeedingRecordHandler", err)
		}

		resp := FeedingRecordResponse{Record: *record}
		if txn != nil {
			t := inventory.TransactionResponseOf(txn)
			resp.Transaction = &t
		}

		if h.Audit != nil {
			h.Audit.Write(c.UserContext(), audit.LogOptions{
				FarmID:      &farmID,
				UserID:      auth.UserID(c),
				UserName:    auth.UserName(c),
				EntityType:  entityFeedingRecord,
				EntityID:    fmt.Sprint(record.ID),
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Fed %s %s of %s", record.Quantity, record.Unit, record.FeedType),
				After:       resp,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/farms/:farmId/feeding-records?page=&pageSize=
func (h *Handlers) ListFeedingRecordsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		number, size, err := utils.ParsePage(c)
		if err != nil {
			return err
		}
		page := ledger.Page{Number: number, Size: size}.Normalize()

		records, total, err := h.Service.List(c.UserContext(), auth.ScopedFarmID(c), page)
		if err != nil {
			return inventory.LedgerError(h.Logger, "ListFeedingRecordsHandler", err)
		}

		if records == nil {
			records = []models.FeedingRecord{}
		}
		return c.JSON(inventory.ListResponse[models.FeedingRecord]{
			Data:     records,
			Total:    total,
			Page:     page.Number,
			PageSize: page.Size,
		})
	}
}
