package repository

import (
	"context"
	"time"

	"github.com/redelink/redelink/models"
)

// AccountingRepository reads the append-only RADIUS accounting log. The log
// is written by the NAS fleet through FreeRADIUS; this side never inserts,
// updates, or deletes.
type AccountingRepository interface {
	// LatestPerSubscriber returns one row per username, the row with the
	// highest radacctid, filtered and paginated in SQL.
	LatestPerSubscriber(ctx context.Context, filter models.AccountingFilter, limit int, offset int) ([]*models.AccountingEvent, error)
	// CountSubscribers counts distinct usernames matching filter.
	CountSubscribers(ctx context.Context, filter models.AccountingFilter) (int64, error)
	// History returns events for one username, newest first by radacctid.
	History(ctx context.Context, username string, limit int, offset int) ([]*models.AccountingEvent, error)
	// CountHistory counts all events recorded for one username.
	CountHistory(ctx context.Context, username string) (int64, error)
	// OpenSessions returns all rows with NULL acctstoptime for username,
	// newest first by radacctid.
	OpenSessions(ctx context.Context, username string) ([]*models.AccountingEvent, error)
	// OpenSessionsFor batches OpenSessions over a page of usernames so the
	// status list can tag stale sessions without one query per row.
	OpenSessionsFor(ctx context.Context, usernames []string) ([]*models.AccountingEvent, error)
}

// ContractRepository manages billing contracts
type ContractRepository interface {
	Save(ctx context.Context, contract *models.Contract) error
	Update(ctx context.Context, contract *models.Contract) error
	ByID(ctx context.Context, id uint) (*models.Contract, error)
	ByFilter(ctx context.Context, filter models.ContractFilter, orderBy string, limit int, offset int) ([]*models.Contract, error)
	Count(ctx context.Context, filter models.ContractFilter) (int64, error)
	// ActiveContracts returns all contracts eligible for reminder evaluation.
	ActiveContracts(ctx context.Context) ([]*models.Contract, error)
}

// MessageTemplateRepository manages the reminder template catalog
type MessageTemplateRepository interface {
	Save(ctx context.Context, template *models.MessageTemplate) error
	Update(ctx context.Context, template *models.MessageTemplate) error
	ByID(ctx context.Context, id uint) (*models.MessageTemplate, error)
	ByFilter(ctx context.Context, filter models.MessageTemplateFilter, orderBy string, limit int, offset int) ([]*models.MessageTemplate, error)
	// ActiveTemplates returns the catalog used by a reminder pass.
	ActiveTemplates(ctx context.Context) ([]*models.MessageTemplate, error)
}

// SentMessageRepository is the append-only reminder send log
type SentMessageRepository interface {
	// Append inserts a send record. A violation of the
	// (contract_id, template_id, sent_minute) unique index is reported as
	// ErrDuplicateSendRecord.
	Append(ctx context.Context, record *models.SentMessage) error
	UpdateStatus(ctx context.Context, id uint, status models.MessageSendStatus) error
	ByFilter(ctx context.Context, filter models.SentMessageFilter, orderBy string, limit int, offset int) ([]*models.SentMessage, error)
	// RecentSends returns successful send records for the given contracts
	// newer than since, used for cooldown evaluation. Failed deliveries are
	// excluded so they stay eligible for retry.
	RecentSends(ctx context.Context, contractIDs []uint, since time.Time) ([]*models.SentMessage, error)
}

// ReminderPassRunRepository tracks daily reminder passes
type ReminderPassRunRepository interface {
	// Begin inserts a run row for date. A unique violation on pass_date is
	// reported as ErrPassRunExists.
	Begin(ctx context.Context, run *models.ReminderPassRun) error
	Finish(ctx context.Context, run *models.ReminderPassRun) error
	// Abort deletes a claimed run that never completed so the date can be
	// claimed again on the next retry.
	Abort(ctx context.Context, run *models.ReminderPassRun) error
	ByFilter(ctx context.Context, filter models.ReminderPassRunFilter, orderBy string, limit int, offset int) ([]*models.ReminderPassRun, error)
	Count(ctx context.Context, filter models.ReminderPassRunFilter) (int64, error)
	ByPassDate(ctx context.Context, date time.Time) (*models.ReminderPassRun, error)
}

// CustomerRepository manages customer records
type CustomerRepository interface {
	Save(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	ByID(ctx context.Context, id uint) (*models.Customer, error)
	ByFilter(ctx context.Context, filter models.CustomerFilter, orderBy string, limit int, offset int) ([]*models.Customer, error)
	Count(ctx context.Context, filter models.CustomerFilter) (int64, error)
}

// TicketRepository manages support tickets
type TicketRepository interface {
	Save(ctx context.Context, ticket *models.Ticket) error
	ByID(ctx context.Context, id uint) (*models.Ticket, error)
	ByFilter(ctx context.Context, filter models.TicketFilter, orderBy string, limit int, offset int) ([]*models.Ticket, error)
	Count(ctx context.Context, filter models.TicketFilter) (int64, error)
}
