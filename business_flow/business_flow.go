package businessflow

import (
	"github.com/redelink/redelink/app/dto"
	"github.com/redelink/redelink/models"
	"github.com/redelink/redelink/utils"
)

const RequestIDKey = "X-Request-ID"

// normalizePage applies defaults and validates the page window
func normalizePage(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return 0, 0, ErrInvalidPageSize
	}
	return page, pageSize, nil
}

// ToAccountingEventDTO converts an accounting event model to its API shape
func ToAccountingEventDTO(ev *models.AccountingEvent) dto.AccountingEventDTO {
	return dto.AccountingEventDTO{
		RadAcctID:        ev.RadAcctID,
		Username:         ev.Username,
		NASIPAddress:     ev.NASIPAddress,
		AcctSessionID:    ev.AcctSessionID,
		AcctStartTime:    ev.AcctStartTime,
		AcctStopTime:     ev.AcctStopTime,
		AcctInputOctets:  ev.AcctInputOctets,
		AcctOutputOctets: ev.AcctOutputOctets,
		TerminateCause:   ev.AcctTerminateCause,
		CallingStationID: ev.CallingStationID,
		FramedIPAddress:  ev.FramedIPAddress,
	}
}

// ToSubscriberStatusDTO converts a resolved status view to its API shape
func ToSubscriberStatusDTO(view *models.SubscriberStatusView) dto.SubscriberStatusDTO {
	out := dto.SubscriberStatusDTO{
		Username: view.Username,
		IsOnline: view.IsOnline,
		LastSeen: view.LastSeen,
	}
	if view.CurrentEvent != nil {
		ev := ToAccountingEventDTO(view.CurrentEvent)
		out.CurrentEvent = &ev
	}
	for _, s := range view.StaleSessions {
		out.StaleSessions = append(out.StaleSessions, ToAccountingEventDTO(s))
	}
	return out
}

// ToCustomerDTO converts a customer model to its API shape
func ToCustomerDTO(c *models.Customer) dto.CustomerDTO {
	return dto.CustomerDTO{
		ID:        c.ID,
		UUID:      c.UUID.String(),
		FullName:  c.FullName,
		Document:  c.Document,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		City:      c.City,
		IsActive:  utils.IsTrue(c.IsActive),
		CreatedAt: c.CreatedAt,
	}
}

// ToContractDTO converts a contract model to its API shape
func ToContractDTO(c *models.Contract) dto.ContractDTO {
	return dto.ContractDTO{
		ID:                 c.ID,
		UUID:               c.UUID.String(),
		CustomerID:         c.CustomerID,
		SubscriberUsername: c.SubscriberUsername,
		Phone:              c.Phone,
		BillingDay:         c.BillingDay,
		MonthlyValue:       c.MonthlyValue,
		Status:             string(c.Status),
		CreatedAt:          c.CreatedAt,
	}
}

// ToTicketDTO converts a ticket model to its API shape
func ToTicketDTO(t *models.Ticket) dto.TicketDTO {
	return dto.TicketDTO{
		ID:                t.ID,
		UUID:              t.UUID.String(),
		CorrelationID:     t.CorrelationID.String(),
		CustomerID:        t.CustomerID,
		Title:             t.Title,
		Content:           t.Content,
		Files:             t.Files,
		RepliedByOperator: utils.IsTrue(t.RepliedByOperator),
		CreatedAt:         t.CreatedAt,
	}
}

// ToReminderPassRunDTO converts a pass run model to its API shape
func ToReminderPassRunDTO(r *models.ReminderPassRun) dto.ReminderPassRunDTO {
	return dto.ReminderPassRunDTO{
		ID:                  r.ID,
		PassDate:            r.PassDate.Format("2006-01-02"),
		ContractsEvaluated:  r.ContractsEvaluated,
		RemindersComputed:   r.RemindersComputed,
		RemindersSent:       r.RemindersSent,
		SkippedCooldown:     r.SkippedCooldown,
		SkippedInvalidPhone: r.SkippedInvalidPhone,
		Errored:             r.Errored,
		StartedAt:           r.StartedAt,
		FinishedAt:          r.FinishedAt,
	}
}
