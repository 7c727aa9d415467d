package audit

import (
	"context"
	"encoding/json"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/config"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const moduleName = "audit"

type LogOptions struct {
	FarmID      *uint
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Writer persists audit entries. A failed write is logged and otherwise
// ignored; it never fails the operation being audited.
type Writer struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewWriter(db *gorm.DB, logger *logrus.Logger) *Writer {
	return &Writer{db: db, logger: logger}
}

func (w *Writer) Write(ctx context.Context, opts LogOptions) {
	entry := BuildLog(opts)
	if err := w.db.WithContext(ctx).Create(&entry).Error; err != nil {
		config.LogError(w.logger, moduleName, "Write", "insert audit log", logrus.Fields{
			"entity_type": opts.EntityType,
			"entity_id":   opts.EntityID,
			"action":      opts.Action,
		}, err)
	}
}

// BuildLog converts opts into the stored row. Snapshots are JSON, "null"
// when absent or not encodable.
func BuildLog(opts LogOptions) models.AuditLog {
	return models.AuditLog{
		FarmID:      opts.FarmID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}
}

func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
