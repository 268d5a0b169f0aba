package models

import "time"

// MessageSendStatus enumerates status of a sent reminder record
type MessageSendStatus string

const (
	MessageSendStatusPending      MessageSendStatus = "pending"
	MessageSendStatusSuccessful   MessageSendStatus = "successful"
	MessageSendStatusUnsuccessful MessageSendStatus = "unsuccessful"
)

// SentMessage records one reminder delivery under the append-only send log.
// The unique index over (contract_id, template_id, sent_minute) is the
// idempotency guard: a retried pass that re-submits the same pair within the
// same minute hits the constraint and gets ErrDuplicateSend instead of a
// second row. SentMinute is SentAt truncated to the minute.
type SentMessage struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	ContractID   uint              `gorm:"not null;index:idx_sent_messages_contract_id;uniqueIndex:uk_sent_messages_dedup" json:"contract_id"`
	TemplateID   uint              `gorm:"not null;index:idx_sent_messages_template_id;uniqueIndex:uk_sent_messages_dedup" json:"template_id"`
	Phone        string            `gorm:"size:20;not null" json:"phone"`
	RenderedBody string            `gorm:"type:text;not null" json:"rendered_body"`
	TrackingID   string            `gorm:"size:64;not null;index:idx_sent_messages_tracking_id" json:"tracking_id"`
	Status       MessageSendStatus `gorm:"type:varchar(16);not null;default:'pending';index:idx_sent_messages_status" json:"status"`
	SentAt       time.Time         `gorm:"not null;index:idx_sent_messages_sent_at" json:"sent_at"`
	SentMinute   time.Time         `gorm:"not null;uniqueIndex:uk_sent_messages_dedup" json:"sent_minute"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (SentMessage) TableName() string { return "sent_messages" }

// SentMessageFilter provides filter fields for repository queries
type SentMessageFilter struct {
	ID         *uint
	ContractID *uint
	TemplateID *uint
	Status     *MessageSendStatus
	SentAfter  *time.Time
	SentBefore *time.Time
}
