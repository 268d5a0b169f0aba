package models

import "time"

// ReminderPassRun is the record of one daily reminder pass. The unique index
// on PassDate doubles as the authoritative concurrent-pass guard: the second
// process trying to start a pass for the same date fails the insert. Counts
// are written back when the pass finishes so skipped and errored contracts
// are never silently dropped.
type ReminderPassRun struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PassDate time.Time `gorm:"type:date;not null;uniqueIndex:uk_reminder_pass_runs_pass_date" json:"pass_date"`

	ContractsEvaluated  int `gorm:"default:0" json:"contracts_evaluated"`
	RemindersComputed   int `gorm:"default:0" json:"reminders_computed"`
	RemindersSent       int `gorm:"default:0" json:"reminders_sent"`
	SkippedCooldown     int `gorm:"default:0" json:"skipped_cooldown"`
	SkippedInvalidPhone int `gorm:"default:0" json:"skipped_invalid_phone"`
	Errored             int `gorm:"default:0" json:"errored"`

	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (ReminderPassRun) TableName() string { return "reminder_pass_runs" }

// ReminderPassRunFilter provides filter fields for repository queries
type ReminderPassRunFilter struct {
	ID            *uint
	PassDateAfter *time.Time
	PassDate      *time.Time
}
