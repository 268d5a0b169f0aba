package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redelink/redelink/app/dto"
	"github.com/redelink/redelink/models"
	"github.com/redelink/redelink/repository"
	"github.com/redelink/redelink/utils"
)

// TicketFlow manages support tickets
type TicketFlow interface {
	CreateTicket(ctx context.Context, req *dto.CreateTicketRequest) (*dto.TicketDTO, error)
	ReplyTicket(ctx context.Context, req *dto.ReplyTicketRequest) (*dto.TicketDTO, error)
	ListTickets(ctx context.Context, req *dto.ListTicketsRequest) (*dto.ListTicketsResponse, error)
}

type ticketFlowImpl struct {
	ticketRepo   repository.TicketRepository
	customerRepo repository.CustomerRepository
	db           *gorm.DB
}

// NewTicketFlow creates a new ticket flow
func NewTicketFlow(ticketRepo repository.TicketRepository, customerRepo repository.CustomerRepository, db *gorm.DB) TicketFlow {
	return &ticketFlowImpl{ticketRepo: ticketRepo, customerRepo: customerRepo, db: db}
}

func (f *ticketFlowImpl) CreateTicket(ctx context.Context, req *dto.CreateTicketRequest) (*dto.TicketDTO, error) {
	if req.Title == "" {
		return nil, ErrTicketTitleEmpty
	}
	if req.Content == "" {
		return nil, ErrTicketContentEmpty
	}

	customer, err := f.customerRepo.ByID(ctx, req.CustomerID)
	if err != nil {
		return nil, NewBusinessError("TICKET_CUSTOMER_LOOKUP_FAILED", "failed to load customer", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	files := req.Files
	if files == nil {
		files = []string{}
	}
	ticket := &models.Ticket{
		UUID:          uuid.New(),
		CorrelationID: uuid.New(),
		CustomerID:    req.CustomerID,
		Title:         req.Title,
		Content:       req.Content,
		Files:         files,
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.ticketRepo.Save(txCtx, ticket)
	})
	if err != nil {
		return nil, NewBusinessError("TICKET_CREATE_FAILED", "failed to create ticket", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	out := ToTicketDTO(ticket)
	return &out, nil
}

func (f *ticketFlowImpl) ReplyTicket(ctx context.Context, req *dto.ReplyTicketRequest) (*dto.TicketDTO, error) {
	if req.Content == "" {
		return nil, ErrTicketContentEmpty
	}

	original, err := f.ticketRepo.ByID(ctx, req.TicketID)
	if err != nil {
		return nil, NewBusinessError("TICKET_LOOKUP_FAILED", "failed to load ticket", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	if original == nil {
		return nil, ErrTicketNotFound
	}

	reply := &models.Ticket{
		UUID:              uuid.New(),
		CorrelationID:     original.CorrelationID,
		CustomerID:        original.CustomerID,
		Title:             original.Title,
		Content:           req.Content,
		Files:             req.Files,
		RepliedByOperator: utils.ToPtr(true),
	}
	if reply.Files == nil {
		reply.Files = []string{}
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.ticketRepo.Save(txCtx, reply)
	})
	if err != nil {
		return nil, NewBusinessError("TICKET_REPLY_FAILED", "failed to save ticket reply", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	out := ToTicketDTO(reply)
	return &out, nil
}

func (f *ticketFlowImpl) ListTickets(ctx context.Context, req *dto.ListTicketsRequest) (*dto.ListTicketsResponse, error) {
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	filter := models.TicketFilter{CustomerID: req.CustomerID}
	tickets, err := f.ticketRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("TICKET_LIST_FAILED", "failed to list tickets", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	total, err := f.ticketRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("TICKET_COUNT_FAILED", "failed to count tickets", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	items := make([]dto.TicketDTO, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, ToTicketDTO(t))
	}

	return &dto.ListTicketsResponse{
		Items:      items,
		Pagination: dto.PaginationDTO{Page: page, PageSize: pageSize, Total: total},
	}, nil
}
