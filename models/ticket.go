package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/redelink/redelink/utils"
)

// Ticket represents a support ticket submitted by a customer or an operator.
// Replies reuse the CorrelationID of the original ticket so a conversation
// can be listed as one group. Files is a list of attachment URLs.
type Ticket struct {
	ID                uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID              uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CorrelationID     uuid.UUID      `gorm:"type:uuid;index;not null" json:"correlation_id"`
	CustomerID        uint           `gorm:"not null;index" json:"customer_id"`
	Title             string         `gorm:"type:varchar(255);not null" json:"title"`
	Content           string         `gorm:"type:text;not null" json:"content"`
	Files             pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"files"`
	RepliedByOperator *bool          `gorm:"default:false;index" json:"replied_by_operator,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Customer *Customer `gorm:"foreignKey:CustomerID;references:ID;constraint:OnDelete:CASCADE" json:"customer,omitempty"`
}

func (Ticket) TableName() string { return "tickets" }

// BeforeCreate ensures UUID and CorrelationID are set
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	if t.CorrelationID == uuid.Nil {
		t.CorrelationID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = utils.UTCNow()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// TicketFilter represents filter criteria for ticket queries
type TicketFilter struct {
	ID                *uint
	UUID              *uuid.UUID
	CorrelationID     *uuid.UUID
	CustomerID        *uint
	Title             *string
	CreatedAfter      *time.Time
	CreatedBefore     *time.Time
	RepliedByOperator *bool
}
