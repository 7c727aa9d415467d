package audit

import (
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/auth"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserID      uint               `json:"user_id"`
	UserName    string             `json:"user_name"`
	EntityType  string             `json:"entity_type"`
	EntityID    string             `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	BeforeData  string             `json:"before_data"`
	AfterData   string             `json:"after_data"`
}

// GET /api/farms/:farmId/audit-logs?entity_type=&entity_id=&user_id=&page=&pageSize=
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		number, size, err := utils.ParsePage(c)
		if err != nil {
			return err
		}
		page := ledger.Page{Number: number, Size: size}.Normalize()

		dbq := db.WithContext(c.UserContext()).Model(&models.AuditLog{}).
			Where("farm_id = ?", auth.ScopedFarmID(c))
		if v := c.Query("entity_type"); v != "" {
			dbq = dbq.Where("entity_type = ?", v)
		}
		if v := c.Query("entity_id"); v != "" {
			dbq = dbq.Where("entity_id = ?", v)
		}
		if v := c.QueryInt("user_id"); v > 0 {
			dbq = dbq.Where("user_id = ?", v)
		}

		dbq = dbq.Session(&gorm.Session{})

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return err
		}
		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Size).Find(&logs).Error; err != nil {
			return err
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, log := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          log.ID,
				CreatedAt:   log.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      log.UserID,
				UserName:    log.UserName,
				EntityType:  log.EntityType,
				EntityID:    log.EntityID,
				Action:      log.Action,
				Description: log.Description,
				BeforeData:  log.BeforeData,
				AfterData:   log.AfterData,
			})
		}

		return c.JSON(fiber.Map{
			"data":      resp,
			"total":     total,
			"page":      page.Number,
			"page_size": page.Size,
		})
	}
}
