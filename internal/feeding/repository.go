package feeding

import (
	"context"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"

	"gorm.io/gorm"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, record *models.FeedingRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *GormRepository) List(ctx context.Context, farmID uint, page ledger.Page) ([]models.FeedingRecord, int64, error) {
	dbq := r.db.WithContext(ctx).Model(&models.FeedingRecord{}).Where("farm_id = ?", farmID)

	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []models.FeedingRecord
	err := dbq.Order("fed_at DESC, id DESC").Offset(page.Offset()).Limit(page.Size).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
