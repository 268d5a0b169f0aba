// Package businessflow contains the core business logic for subscriber
// status resolution and billing reminders
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")

	// Subscriber-related errors
	ErrSubscriberNotFound = errors.New("subscriber not found")

	// Customer-related errors
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrCustomerInactive      = errors.New("customer is inactive")
	ErrDocumentAlreadyExists = errors.New("document already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")

	// Contract-related errors
	ErrContractNotFound       = errors.New("contract not found")
	ErrInvalidContractData    = errors.New("invalid contract data")
	ErrInvalidBillingDay      = errors.New("billing day must be between 1 and 31")
	ErrInvalidMonthlyValue    = errors.New("monthly value must be positive")
	ErrInvalidContractStatus  = errors.New("invalid contract status")
	ErrSubscriberLoginInUse   = errors.New("subscriber login already bound to a contract")
	ErrUndeliverablePhone     = errors.New("phone number is undeliverable")
	ErrContractNotActive      = errors.New("contract is not active")
	ErrCustomerFieldsRequired = errors.New("customer name and phone are required")

	// Template-related errors
	ErrTemplateNotFound     = errors.New("message template not found")
	ErrTemplateNameInUse    = errors.New("template name already exists")
	ErrTemplateBodyEmpty    = errors.New("template body is required")
	ErrNoActiveTemplates    = errors.New("no active message templates")
	ErrDuplicateSend        = errors.New("reminder already sent")
	ErrPassAlreadyRan       = errors.New("reminder pass already ran for date")
	ErrTransportRejected    = errors.New("message transport rejected send")
	ErrTransportUnreachable = errors.New("message transport unreachable")

	// Ticket-related errors
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrTicketTitleEmpty   = errors.New("ticket title is required")
	ErrTicketContentEmpty = errors.New("ticket content is required")

	// Auth errors
	ErrIncorrectCredentials = errors.New("incorrect credentials")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

func IsSubscriberNotFound(err error) bool {
	return errors.Is(err, ErrSubscriberNotFound)
}

func IsCustomerNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound)
}

func IsCustomerInactive(err error) bool {
	return errors.Is(err, ErrCustomerInactive)
}

func IsDocumentAlreadyExists(err error) bool {
	return errors.Is(err, ErrDocumentAlreadyExists)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsContractNotFound(err error) bool {
	return errors.Is(err, ErrContractNotFound)
}

func IsInvalidContractData(err error) bool {
	return errors.Is(err, ErrInvalidContractData)
}

func IsInvalidBillingDay(err error) bool {
	return errors.Is(err, ErrInvalidBillingDay)
}

func IsUndeliverablePhone(err error) bool {
	return errors.Is(err, ErrUndeliverablePhone)
}

func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

func IsTemplateNameInUse(err error) bool {
	return errors.Is(err, ErrTemplateNameInUse)
}

func IsDuplicateSend(err error) bool {
	return errors.Is(err, ErrDuplicateSend)
}

func IsPassAlreadyRan(err error) bool {
	return errors.Is(err, ErrPassAlreadyRan)
}

func IsTicketNotFound(err error) bool {
	return errors.Is(err, ErrTicketNotFound)
}

func IsIncorrectCredentials(err error) bool {
	return errors.Is(err, ErrIncorrectCredentials)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
