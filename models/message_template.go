package models

import "time"

// MessageTemplate is one reminder message in the billing notification
// catalog. DayOffset positions the template relative to the contract's due
// date: positive means the reminder goes out that many days before the due
// date, zero or negative means an overdue notice that many days after it.
// Templates are configuration; the scheduler loads the catalog once per pass.
type MessageTemplate struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:80;not null;uniqueIndex:uk_message_templates_name" json:"name"`
	DayOffset int    `gorm:"not null" json:"day_offset"`
	Body      string `gorm:"type:text;not null" json:"body"`
	IsActive  *bool  `gorm:"default:true;index:idx_message_templates_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (MessageTemplate) TableName() string { return "message_templates" }

// MessageTemplateFilter provides filter fields for repository queries
type MessageTemplateFilter struct {
	ID        *uint
	Name      *string
	DayOffset *int
	IsActive  *bool
}
