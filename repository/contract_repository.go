package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/redelink/redelink/models"
	"github.com/redelink/redelink/utils"
)

type contractRepository struct {
	*BaseRepository[models.Contract, models.ContractFilter]
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{
		BaseRepository: NewBaseRepository[models.Contract, models.ContractFilter](db, applyContractFilter),
	}
}

func applyContractFilter(q *gorm.DB, filter models.ContractFilter) *gorm.DB {
	if filter.ID != nil {
		q = q.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		q = q.Where("uuid = ?", *filter.UUID)
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.SubscriberUsername != nil {
		q = q.Where("subscriber_username = ?", *filter.SubscriberUsername)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.BillingDay != nil {
		q = q.Where("billing_day = ?", *filter.BillingDay)
	}
	if filter.CreatedAfter != nil {
		q = q.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return q
}

func (r *contractRepository) ActiveContracts(ctx context.Context) ([]*models.Contract, error) {
	return r.ByFilter(ctx, models.ContractFilter{
		Status: utils.ToPtr(models.ContractStatusActive),
	}, "id ASC", 0, 0)
}
