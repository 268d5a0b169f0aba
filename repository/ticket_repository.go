package repository

import (
	"gorm.io/gorm"

	"github.com/redelink/redelink/models"
)

type ticketRepository struct {
	*BaseRepository[models.Ticket, models.TicketFilter]
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{
		BaseRepository: NewBaseRepository[models.Ticket, models.TicketFilter](db, applyTicketFilter),
	}
}

func applyTicketFilter(q *gorm.DB, filter models.TicketFilter) *gorm.DB {
	if filter.ID != nil {
		q = q.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		q = q.Where("uuid = ?", *filter.UUID)
	}
	if filter.CorrelationID != nil {
		q = q.Where("correlation_id = ?", *filter.CorrelationID)
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Title != nil {
		q = q.Where("title ILIKE ?", "%"+*filter.Title+"%")
	}
	if filter.CreatedAfter != nil {
		q = q.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("created_at <= ?", *filter.CreatedBefore)
	}
	if filter.RepliedByOperator != nil {
		q = q.Where("replied_by_operator = ?", *filter.RepliedByOperator)
	}
	return q
}
