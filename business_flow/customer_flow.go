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

// CustomerFlow manages customer records
type CustomerFlow interface {
	CreateCustomer(ctx context.Context, req *dto.CreateCustomerRequest) (*dto.CustomerDTO, error)
	GetCustomer(ctx context.Context, id uint) (*dto.CustomerDTO, error)
	ListCustomers(ctx context.Context, req *dto.ListCustomersRequest) (*dto.ListCustomersResponse, error)
}

type customerFlowImpl struct {
	customerRepo repository.CustomerRepository
	db           *gorm.DB
}

// NewCustomerFlow creates a new customer flow
func NewCustomerFlow(customerRepo repository.CustomerRepository, db *gorm.DB) CustomerFlow {
	return &customerFlowImpl{customerRepo: customerRepo, db: db}
}

func (f *customerFlowImpl) CreateCustomer(ctx context.Context, req *dto.CreateCustomerRequest) (*dto.CustomerDTO, error) {
	if req.FullName == "" || req.Phone == "" {
		return nil, ErrCustomerFieldsRequired
	}

	if req.Document != nil {
		exists, err := f.customerRepo.Count(ctx, models.CustomerFilter{Document: req.Document})
		if err != nil {
			return nil, NewBusinessError("CUSTOMER_LOOKUP_FAILED", "failed to check document uniqueness", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
		}
		if exists > 0 {
			return nil, ErrDocumentAlreadyExists
		}
	}
	if req.Email != nil {
		exists, err := f.customerRepo.Count(ctx, models.CustomerFilter{Email: req.Email})
		if err != nil {
			return nil, NewBusinessError("CUSTOMER_LOOKUP_FAILED", "failed to check email uniqueness", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
		}
		if exists > 0 {
			return nil, ErrEmailAlreadyExists
		}
	}

	customer := &models.Customer{
		UUID:     uuid.New(),
		FullName: req.FullName,
		Document: req.Document,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		IsActive: utils.ToPtr(true),
	}

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.customerRepo.Save(txCtx, customer)
	})
	if err != nil {
		return nil, NewBusinessError("CUSTOMER_CREATE_FAILED", "failed to create customer", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	out := ToCustomerDTO(customer)
	return &out, nil
}

func (f *customerFlowImpl) GetCustomer(ctx context.Context, id uint) (*dto.CustomerDTO, error) {
	customer, err := f.customerRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("CUSTOMER_LOOKUP_FAILED", "failed to load customer", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	out := ToCustomerDTO(customer)
	return &out, nil
}

func (f *customerFlowImpl) ListCustomers(ctx context.Context, req *dto.ListCustomersRequest) (*dto.ListCustomersResponse, error) {
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	filter := models.CustomerFilter{}
	if req.Search != "" {
		filter.Search = utils.ToPtr(req.Search)
	}

	customers, err := f.customerRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("CUSTOMER_LIST_FAILED", "failed to list customers", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	total, err := f.customerRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CUSTOMER_COUNT_FAILED", "failed to count customers", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	items := make([]dto.CustomerDTO, 0, len(customers))
	for _, c := range customers {
		items = append(items, ToCustomerDTO(c))
	}

	return &dto.ListCustomersResponse{
		Items:      items,
		Pagination: dto.PaginationDTO{Page: page, PageSize: pageSize, Total: total},
	}, nil
}
