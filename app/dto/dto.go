// Package dto contains request and response types shared between handlers
// and business flows
package dto

import "time"

// APIResponse is the envelope for all API responses
type APIResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail provides structured error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// PaginationDTO describes the page window of a list response
type PaginationDTO struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// LoginRequest is the operator login payload
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginResponse carries the issued token pair
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// AccountingEventDTO is one row of the RADIUS accounting log
type AccountingEventDTO struct {
	RadAcctID        int64      `json:"radacctid"`
	Username         string     `json:"username"`
	NASIPAddress     string     `json:"nasipaddress"`
	AcctSessionID    string     `json:"acctsessionid"`
	AcctStartTime    time.Time  `json:"acctstarttime"`
	AcctStopTime     *time.Time `json:"acctstoptime,omitempty"`
	AcctInputOctets  int64      `json:"acctinputoctets"`
	AcctOutputOctets int64      `json:"acctoutputoctets"`
	TerminateCause   *string    `json:"acctterminatecause,omitempty"`
	CallingStationID *string    `json:"callingstationid,omitempty"`
	FramedIPAddress  *string    `json:"framedipaddress,omitempty"`
}

// SubscriberStatusDTO is the resolved connection status of one subscriber
type SubscriberStatusDTO struct {
	Username      string               `json:"username"`
	IsOnline      bool                 `json:"is_online"`
	LastSeen      time.Time            `json:"last_seen"`
	CurrentEvent  *AccountingEventDTO  `json:"current_event,omitempty"`
	StaleSessions []AccountingEventDTO `json:"stale_sessions,omitempty"`
}

// SubscriberStatusListRequest is the query surface of the status list
type SubscriberStatusListRequest struct {
	Search       string `query:"search" validate:"omitempty,max=100"`
	Online       string `query:"online" validate:"omitempty,oneof=online offline"`
	NASIPAddress string `query:"nas_ip" validate:"omitempty,ip"`
	Page         int    `query:"page" validate:"omitempty,min=1"`
	PageSize     int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// SubscriberStatusListResponse is the paginated status list plus the online
// counter shown on the dashboard header
type SubscriberStatusListResponse struct {
	Items       []SubscriberStatusDTO `json:"items"`
	OnlineCount int64                 `json:"online_count"`
	Pagination  PaginationDTO         `json:"pagination"`
}

// SessionHistoryRequest is the query surface of the per-subscriber history
type SessionHistoryRequest struct {
	Username string `params:"username" validate:"required,max=64"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// SessionHistoryResponse lists a subscriber's sessions newest first
type SessionHistoryResponse struct {
	Username   string               `json:"username"`
	Items      []AccountingEventDTO `json:"items"`
	Pagination PaginationDTO        `json:"pagination"`
}

// CreateCustomerRequest registers a new customer
type CreateCustomerRequest struct {
	FullName string  `json:"full_name" validate:"required,min=3,max=255"`
	Document *string `json:"document" validate:"omitempty,min=8,max=20"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Phone    string  `json:"phone" validate:"required,min=8,max=20"`
	Address  *string `json:"address" validate:"omitempty,max=255"`
	City     *string `json:"city" validate:"omitempty,max=80"`
}

// CustomerDTO is the API shape of a customer
type CustomerDTO struct {
	ID        uint      `json:"id"`
	UUID      string    `json:"uuid"`
	FullName  string    `json:"full_name"`
	Document  *string   `json:"document,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Phone     string    `json:"phone"`
	Address   *string   `json:"address,omitempty"`
	City      *string   `json:"city,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ListCustomersRequest is the query surface of the customer list
type ListCustomersRequest struct {
	Search   string `query:"search" validate:"omitempty,max=100"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListCustomersResponse is the paginated customer list
type ListCustomersResponse struct {
	Items      []CustomerDTO `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}

// CreateContractRequest binds a subscriber login to a billing agreement
type CreateContractRequest struct {
	CustomerID         uint    `json:"customer_id" validate:"required"`
	SubscriberUsername string  `json:"subscriber_username" validate:"required,min=3,max=64"`
	Phone              string  `json:"phone" validate:"required,min=8,max=20"`
	BillingDay         int     `json:"billing_day" validate:"required,min=1,max=31"`
	MonthlyValue       float64 `json:"monthly_value" validate:"required,gt=0"`
}

// UpdateContractStatusRequest moves a contract between lifecycle states
type UpdateContractStatusRequest struct {
	ContractID uint   `params:"id" validate:"required"`
	Status     string `json:"status" validate:"required,oneof=active suspended cancelled"`
}

// ContractDTO is the API shape of a contract
type ContractDTO struct {
	ID                 uint      `json:"id"`
	UUID               string    `json:"uuid"`
	CustomerID         uint      `json:"customer_id"`
	SubscriberUsername string    `json:"subscriber_username"`
	Phone              string    `json:"phone"`
	BillingDay         int       `json:"billing_day"`
	MonthlyValue       float64   `json:"monthly_value"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

// ListContractsRequest is the query surface of the contract list
type ListContractsRequest struct {
	CustomerID *uint  `query:"customer_id"`
	Status     string `query:"status" validate:"omitempty,oneof=active suspended cancelled"`
	Page       int    `query:"page" validate:"omitempty,min=1"`
	PageSize   int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListContractsResponse is the paginated contract list
type ListContractsResponse struct {
	Items      []ContractDTO `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}

// CreateTemplateRequest adds a reminder template to the catalog
type CreateTemplateRequest struct {
	Name      string `json:"name" validate:"required,min=3,max=80"`
	DayOffset int    `json:"day_offset" validate:"min=-60,max=60"`
	Body      string `json:"body" validate:"required,min=1"`
}

// MessageTemplateDTO is the API shape of a reminder template
type MessageTemplateDTO struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	DayOffset int    `json:"day_offset"`
	Body      string `json:"body"`
	IsActive  bool   `json:"is_active"`
}

// RunPassRequest optionally pins a manual reminder pass to a date. An empty
// body runs the pass for the current UTC date.
type RunPassRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// ReminderPassRunDTO summarizes one daily reminder pass
type ReminderPassRunDTO struct {
	ID                  uint       `json:"id"`
	PassDate            string     `json:"pass_date"`
	ContractsEvaluated  int        `json:"contracts_evaluated"`
	RemindersComputed   int        `json:"reminders_computed"`
	RemindersSent       int        `json:"reminders_sent"`
	SkippedCooldown     int        `json:"skipped_cooldown"`
	SkippedInvalidPhone int        `json:"skipped_invalid_phone"`
	Errored             int        `json:"errored"`
	StartedAt           time.Time  `json:"started_at"`
	FinishedAt          *time.Time `json:"finished_at,omitempty"`
}

// ListPassRunsRequest is the query surface of the pass run history
type ListPassRunsRequest struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListPassRunsResponse is the paginated pass run history
type ListPassRunsResponse struct {
	Items      []ReminderPassRunDTO `json:"items"`
	Pagination PaginationDTO        `json:"pagination"`
}

// CreateTicketRequest opens a support ticket for a customer
type CreateTicketRequest struct {
	CustomerID uint     `json:"customer_id" validate:"required"`
	Title      string   `json:"title" validate:"required,min=3,max=255"`
	Content    string   `json:"content" validate:"required,min=1"`
	Files      []string `json:"files" validate:"omitempty,dive,url"`
}

// ReplyTicketRequest appends an operator reply to an existing conversation
type ReplyTicketRequest struct {
	TicketID uint     `params:"id" validate:"required"`
	Content  string   `json:"content" validate:"required,min=1"`
	Files    []string `json:"files" validate:"omitempty,dive,url"`
}

// TicketDTO is the API shape of a ticket
type TicketDTO struct {
	ID                uint      `json:"id"`
	UUID              string    `json:"uuid"`
	CorrelationID     string    `json:"correlation_id"`
	CustomerID        uint      `json:"customer_id"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	Files             []string  `json:"files"`
	RepliedByOperator bool      `json:"replied_by_operator"`
	CreatedAt         time.Time `json:"created_at"`
}

// ListTicketsRequest is the query surface of the ticket list
type ListTicketsRequest struct {
	CustomerID *uint `query:"customer_id"`
	Page       int   `query:"page" validate:"omitempty,min=1"`
	PageSize   int   `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListTicketsResponse is the paginated ticket list
type ListTicketsResponse struct {
	Items      []TicketDTO   `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}
