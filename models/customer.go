package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is an ISP client record. Contracts and tickets hang off it; the
// record itself is never deleted, only deactivated.
type Customer struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UUID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_customers_uuid" json:"uuid"`
	FullName string    `gorm:"size:255;not null;index:idx_customers_full_name" json:"full_name"`
	Document *string   `gorm:"size:20;uniqueIndex:uk_customers_document" json:"document,omitempty"`
	Email    *string   `gorm:"size:255;index:idx_customers_email" json:"email,omitempty"`
	Phone    string    `gorm:"size:20;not null" json:"phone"`
	Address  *string   `gorm:"size:255" json:"address,omitempty"`
	City     *string   `gorm:"size:80" json:"city,omitempty"`

	IsActive *bool `gorm:"default:true;index:idx_customers_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_customers_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Contracts []Contract `gorm:"foreignKey:CustomerID" json:"contracts,omitempty"`
	Tickets   []Ticket   `gorm:"foreignKey:CustomerID" json:"-"`
}

func (Customer) TableName() string { return "customers" }

// CustomerFilter represents filter criteria for customer queries
type CustomerFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Document      *string
	Email         *string
	Search        *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
