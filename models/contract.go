package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContractStatus enumerates the lifecycle states of a billing contract
type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusSuspended ContractStatus = "suspended"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// Contract is a billing agreement for one subscriber login. Contracts are
// created at signup and only ever soft-changed via Status; rows are never
// deleted. BillingDay is the contractual day-of-month the invoice falls due;
// days beyond a month's length are clamped to the month's last day when the
// due date is resolved.
type Contract struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UUID               uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_contracts_uuid" json:"uuid"`
	CustomerID         uint           `gorm:"not null;index:idx_contracts_customer_id" json:"customer_id"`
	SubscriberUsername string         `gorm:"size:64;not null;index:idx_contracts_subscriber_username" json:"subscriber_username"`
	Phone              string         `gorm:"size:20;not null" json:"phone"`
	BillingDay         int            `gorm:"not null" json:"billing_day"`
	MonthlyValue       float64        `gorm:"type:numeric(12,2);not null" json:"monthly_value"`
	Status             ContractStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_contracts_status" json:"status"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_contracts_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Customer *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
}

func (Contract) TableName() string { return "contracts" }

// BeforeCreate ensures the UUID is set
func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}

// IsActive reports whether the contract is eligible for billing reminders.
func (c *Contract) IsActive() bool { return c.Status == ContractStatusActive }

// ContractFilter represents filter criteria for contract queries
type ContractFilter struct {
	ID                 *uint
	UUID               *uuid.UUID
	CustomerID         *uint
	SubscriberUsername *string
	Status             *ContractStatus
	BillingDay         *int
	CreatedAfter       *time.Time
	CreatedBefore      *time.Time
}
