package repository

import (
	"gorm.io/gorm"

	"github.com/redelink/redelink/models"
)

type customerRepository struct {
	*BaseRepository[models.Customer, models.CustomerFilter]
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{
		BaseRepository: NewBaseRepository[models.Customer, models.CustomerFilter](db, applyCustomerFilter),
	}
}

func applyCustomerFilter(q *gorm.DB, filter models.CustomerFilter) *gorm.DB {
	if filter.ID != nil {
		q = q.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		q = q.Where("uuid = ?", *filter.UUID)
	}
	if filter.Document != nil {
		q = q.Where("document = ?", *filter.Document)
	}
	if filter.Email != nil {
		q = q.Where("email = ?", *filter.Email)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		q = q.Where("full_name ILIKE ? OR COALESCE(email, '') ILIKE ? OR phone ILIKE ?", pattern, pattern, pattern)
	}
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		q = q.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return q
}
