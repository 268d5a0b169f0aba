package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/redelink/redelink/models"
	"github.com/redelink/redelink/utils"
)

type messageTemplateRepository struct {
	*BaseRepository[models.MessageTemplate, models.MessageTemplateFilter]
}

// NewMessageTemplateRepository creates a new message template repository
func NewMessageTemplateRepository(db *gorm.DB) MessageTemplateRepository {
	return &messageTemplateRepository{
		BaseRepository: NewBaseRepository[models.MessageTemplate, models.MessageTemplateFilter](db, applyMessageTemplateFilter),
	}
}

func applyMessageTemplateFilter(q *gorm.DB, filter models.MessageTemplateFilter) *gorm.DB {
	if filter.ID != nil {
		q = q.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		q = q.Where("name = ?", *filter.Name)
	}
	if filter.DayOffset != nil {
		q = q.Where("day_offset = ?", *filter.DayOffset)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	return q
}

func (r *messageTemplateRepository) ActiveTemplates(ctx context.Context) ([]*models.MessageTemplate, error) {
	return r.ByFilter(ctx, models.MessageTemplateFilter{
		IsActive: utils.ToPtr(true),
	}, "day_offset DESC", 0, 0)
}
