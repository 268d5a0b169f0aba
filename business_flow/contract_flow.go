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

// ContractFlow manages billing contracts and the reminder template catalog
type ContractFlow interface {
	CreateContract(ctx context.Context, req *dto.CreateContractRequest) (*dto.ContractDTO, error)
	UpdateContractStatus(ctx context.Context, req *dto.UpdateContractStatusRequest) (*dto.ContractDTO, error)
	ListContracts(ctx context.Context, req *dto.ListContractsRequest) (*dto.ListContractsResponse, error)
	CreateTemplate(ctx context.Context, req *dto.CreateTemplateRequest) (*dto.MessageTemplateDTO, error)
	ListTemplates(ctx context.Context) ([]dto.MessageTemplateDTO, error)
}

type contractFlowImpl struct {
	contractRepo   repository.ContractRepository
	templateRepo   repository.MessageTemplateRepository
	customerRepo   repository.CustomerRepository
	db             *gorm.DB
	minPhoneDigits int
}

// NewContractFlow creates a new contract flow
func NewContractFlow(
	contractRepo repository.ContractRepository,
	templateRepo repository.MessageTemplateRepository,
	customerRepo repository.CustomerRepository,
	db *gorm.DB,
	minPhoneDigits int,
) ContractFlow {
	if minPhoneDigits <= 0 {
		minPhoneDigits = utils.MinPhoneDigits
	}
	return &contractFlowImpl{
		contractRepo:   contractRepo,
		templateRepo:   templateRepo,
		customerRepo:   customerRepo,
		db:             db,
		minPhoneDigits: minPhoneDigits,
	}
}

func (f *contractFlowImpl) CreateContract(ctx context.Context, req *dto.CreateContractRequest) (*dto.ContractDTO, error) {
	if req.BillingDay < 1 || req.BillingDay > 31 {
		return nil, ErrInvalidBillingDay
	}
	if req.MonthlyValue <= 0 {
		return nil, ErrInvalidMonthlyValue
	}
	if !utils.IsDeliverablePhone(req.Phone, f.minPhoneDigits) {
		return nil, ErrUndeliverablePhone
	}

	customer, err := f.customerRepo.ByID(ctx, req.CustomerID)
	if err != nil {
		return nil, NewBusinessError("CONTRACT_CUSTOMER_LOOKUP_FAILED", "failed to load customer", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	if !utils.IsTrue(customer.IsActive) {
		return nil, ErrCustomerInactive
	}

	active := models.ContractStatusActive
	existing, err := f.contractRepo.Count(ctx, models.ContractFilter{
		SubscriberUsername: utils.ToPtr(req.SubscriberUsername),
		Status:             &active,
	})
	if err != nil {
		return nil, NewBusinessError("CONTRACT_LOOKUP_FAILED", "failed to check subscriber binding", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	if existing > 0 {
		return nil, ErrSubscriberLoginInUse
	}

	contract := &models.Contract{
		UUID:               uuid.New(),
		CustomerID:         req.CustomerID,
		SubscriberUsername: req.SubscriberUsername,
		Phone:              req.Phone,
		BillingDay:         req.BillingDay,
		MonthlyValue:       req.MonthlyValue,
		Status:             models.ContractStatusActive,
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.contractRepo.Save(txCtx, contract)
	})
	if err != nil {
		return nil, NewBusinessError("CONTRACT_CREATE_FAILED", "failed to create contract", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	out := ToContractDTO(contract)
	return &out, nil
}

func (f *contractFlowImpl) UpdateContractStatus(ctx context.Context, req *dto.UpdateContractStatusRequest) (*dto.ContractDTO, error) {
	status := models.ContractStatus(req.Status)
	switch status {
	case models.ContractStatusActive, models.ContractStatusSuspended, models.ContractStatusCancelled:
	default:
		return nil, ErrInvalidContractStatus
	}

	contract, err := f.contractRepo.ByID(ctx, req.ContractID)
	if err != nil {
		return nil, NewBusinessError("CONTRACT_LOOKUP_FAILED", "failed to load contract", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}

	contract.Status = status
	contract.UpdatedAt = utils.UTCNow()
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.contractRepo.Update(txCtx, contract)
	})
	if err != nil {
		return nil, NewBusinessError("CONTRACT_UPDATE_FAILED", "failed to update contract", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	out := ToContractDTO(contract)
	return &out, nil
}

func (f *contractFlowImpl) ListContracts(ctx context.Context, req *dto.ListContractsRequest) (*dto.ListContractsResponse, error) {
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	filter := models.ContractFilter{CustomerID: req.CustomerID}
	if req.Status != "" {
		status := models.ContractStatus(req.Status)
		filter.Status = &status
	}

	contracts, err := f.contractRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("CONTRACT_LIST_FAILED", "failed to list contracts", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	total, err := f.contractRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CONTRACT_COUNT_FAILED", "failed to count contracts", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	items := make([]dto.ContractDTO, 0, len(contracts))
	for _, c := range contracts {
		items = append(items, ToContractDTO(c))
	}

	return &dto.ListContractsResponse{
		Items:      items,
		Pagination: dto.PaginationDTO{Page: page, PageSize: pageSize, Total: total},
	}, nil
}

func (f *contractFlowImpl) CreateTemplate(ctx context.Context, req *dto.CreateTemplateRequest) (*dto.MessageTemplateDTO, error) {
	if req.Body == "" {
		return nil, ErrTemplateBodyEmpty
	}

	existing, err := f.templateRepo.ByFilter(ctx, models.MessageTemplateFilter{Name: utils.ToPtr(req.Name)}, "", 1, 0)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LOOKUP_FAILED", "failed to check template name", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	if len(existing) > 0 {
		return nil, ErrTemplateNameInUse
	}

	template := &models.MessageTemplate{
		Name:      req.Name,
		DayOffset: req.DayOffset,
		Body:      req.Body,
		IsActive:  utils.ToPtr(true),
	}
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.templateRepo.Save(txCtx, template)
	})
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_CREATE_FAILED", "failed to create template", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	out := toTemplateDTO(template)
	return &out, nil
}

func (f *contractFlowImpl) ListTemplates(ctx context.Context) ([]dto.MessageTemplateDTO, error) {
	templates, err := f.templateRepo.ByFilter(ctx, models.MessageTemplateFilter{}, "day_offset DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LIST_FAILED", "failed to list templates", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	items := make([]dto.MessageTemplateDTO, 0, len(templates))
	for _, t := range templates {
		items = append(items, toTemplateDTO(t))
	}
	return items, nil
}

func toTemplateDTO(t *models.MessageTemplate) dto.MessageTemplateDTO {
	return dto.MessageTemplateDTO{
		ID:        t.ID,
		Name:      t.Name,
		DayOffset: t.DayOffset,
		Body:      t.Body,
		IsActive:  utils.IsTrue(t.IsActive),
	}
}
