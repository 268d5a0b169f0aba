package businessflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redelink/redelink/app/dto"
	"github.com/redelink/redelink/models"
	"github.com/redelink/redelink/repository"
	"github.com/redelink/redelink/utils"
)

// stubCustomerRepo serves customers by ID from a map
type stubCustomerRepo struct {
	repository.CustomerRepository
	customers map[uint]*models.Customer
}

func (s *stubCustomerRepo) ByID(ctx context.Context, id uint) (*models.Customer, error) {
	return s.customers[id], nil
}

// stubContractRepo stores contracts in memory
type stubContractRepo struct {
	repository.ContractRepository
	contracts []*models.Contract
}

func (s *stubContractRepo) Save(ctx context.Context, contract *models.Contract) error {
	contract.ID = uint(len(s.contracts) + 1)
	s.contracts = append(s.contracts, contract)
	return nil
}

func (s *stubContractRepo) Update(ctx context.Context, contract *models.Contract) error {
	return nil
}

func (s *stubContractRepo) ByID(ctx context.Context, id uint) (*models.Contract, error) {
	for _, c := range s.contracts {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (s *stubContractRepo) Count(ctx context.Context, filter models.ContractFilter) (int64, error) {
	var n int64
	for _, c := range s.contracts {
		if filter.SubscriberUsername != nil && c.SubscriberUsername != *filter.SubscriberUsername {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		n++
	}
	return n, nil
}

// stubTemplateRepo stores templates in memory
type stubTemplateRepo struct {
	repository.MessageTemplateRepository
	templates []*models.MessageTemplate
}

func (s *stubTemplateRepo) Save(ctx context.Context, template *models.MessageTemplate) error {
	template.ID = uint(len(s.templates) + 1)
	s.templates = append(s.templates, template)
	return nil
}

func (s *stubTemplateRepo) ByFilter(ctx context.Context, filter models.MessageTemplateFilter, orderBy string, limit, offset int) ([]*models.MessageTemplate, error) {
	var out []*models.MessageTemplate
	for _, t := range s.templates {
		if filter.Name != nil && t.Name != *filter.Name {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func activeCustomer(id uint) *models.Customer {
	return &models.Customer{
		ID:       id,
		FullName: "Maria da Silva",
		Phone:    "11987654321",
		IsActive: utils.ToPtr(true),
	}
}

func newTestContractFlow(contracts *stubContractRepo, templates *stubTemplateRepo, customers *stubCustomerRepo) ContractFlow {
	return NewContractFlow(contracts, templates, customers, nil, 10)
}

func validCreateContractRequest() *dto.CreateContractRequest {
	return &dto.CreateContractRequest{
		CustomerID:         1,
		SubscriberUsername: "maria01",
		Phone:              "11987654321",
		BillingDay:         10,
		MonthlyValue:       89.90,
	}
}

func TestCreateContract(t *testing.T) {
	t.Run("creates active contract", func(t *testing.T) {
		contracts := &stubContractRepo{}
		customers := &stubCustomerRepo{customers: map[uint]*models.Customer{1: activeCustomer(1)}}
		flow := newTestContractFlow(contracts, &stubTemplateRepo{}, customers)

		out, err := flow.CreateContract(context.Background(), validCreateContractRequest())
		require.NoError(t, err)
		assert.Equal(t, "maria01", out.SubscriberUsername)
		assert.Equal(t, "active", out.Status)
		assert.NotEmpty(t, out.UUID)
		require.Len(t, contracts.contracts, 1)
	})

	t.Run("rejects billing day outside 1 to 31", func(t *testing.T) {
		flow := newTestContractFlow(&stubContractRepo{}, &stubTemplateRepo{}, &stubCustomerRepo{})
		for _, day := range []int{0, -1, 32} {
			req := validCreateContractRequest()
			req.BillingDay = day
			_, err := flow.CreateContract(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidBillingDay)
		}
	})

	t.Run("rejects non-positive monthly value", func(t *testing.T) {
		flow := newTestContractFlow(&stubContractRepo{}, &stubTemplateRepo{}, &stubCustomerRepo{})
		req := validCreateContractRequest()
		req.MonthlyValue = 0
		_, err := flow.CreateContract(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidMonthlyValue)
	})

	t.Run("rejects undeliverable phone", func(t *testing.T) {
		flow := newTestContractFlow(&stubContractRepo{}, &stubTemplateRepo{}, &stubCustomerRepo{})
		req := validCreateContractRequest()
		req.Phone = "123"
		_, err := flow.CreateContract(context.Background(), req)
		assert.ErrorIs(t, err, ErrUndeliverablePhone)
	})

	t.Run("rejects unknown customer", func(t *testing.T) {
		flow := newTestContractFlow(&stubContractRepo{}, &stubTemplateRepo{}, &stubCustomerRepo{customers: map[uint]*models.Customer{}})
		_, err := flow.CreateContract(context.Background(), validCreateContractRequest())
		assert.ErrorIs(t, err, ErrCustomerNotFound)
	})

	t.Run("rejects inactive customer", func(t *testing.T) {
		inactive := activeCustomer(1)
		inactive.IsActive = utils.ToPtr(false)
		flow := newTestContractFlow(&stubContractRepo{}, &stubTemplateRepo{}, &stubCustomerRepo{customers: map[uint]*models.Customer{1: inactive}})
		_, err := flow.CreateContract(context.Background(), validCreateContractRequest())
		assert.ErrorIs(t, err, ErrCustomerInactive)
	})

	t.Run("rejects subscriber login already bound to an active contract", func(t *testing.T) {
		contracts := &stubContractRepo{contracts: []*models.Contract{{
			ID:                 1,
			SubscriberUsername: "maria01",
			Status:             models.ContractStatusActive,
		}}}
		customers := &stubCustomerRepo{customers: map[uint]*models.Customer{1: activeCustomer(1)}}
		flow := newTestContractFlow(contracts, &stubTemplateRepo{}, customers)

		_, err := flow.CreateContract(context.Background(), validCreateContractRequest())
		assert.ErrorIs(t, err, ErrSubscriberLoginInUse)
	})

	t.Run("cancelled contract frees the subscriber login", func(t *testing.T) {
		contracts := &stubContractRepo{contracts: []*models.Contract{{
			ID:                 1,
			SubscriberUsername: "maria01",
			Status:             models.ContractStatusCancelled,
		}}}
		customers := &stubCustomerRepo{customers: map[uint]*models.Customer{1: activeCustomer(1)}}
		flow := newTestContractFlow(contracts, &stubTemplateRepo{}, customers)

		_, err := flow.CreateContract(context.Background(), validCreateContractRequest())
		assert.NoError(t, err)
	})
}

func TestUpdateContractStatus(t *testing.T) {
	t.Run("moves contract between states", func(t *testing.T) {
		contracts := &stubContractRepo{contracts: []*models.Contract{{
			ID:     1,
			Status: models.ContractStatusActive,
		}}}
		flow := newTestContractFlow(contracts, &stubTemplateRepo{}, &stubCustomerRepo{})

		out, err := flow.UpdateContractStatus(context.Background(), &dto.UpdateContractStatusRequest{ContractID: 1, Status: "suspended"})
		require.NoError(t, err)
		assert.Equal(t, "suspended", out.Status)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		flow := newTestContractFlow(&stubContractRepo{}, &stubTemplateRepo{}, &stubCustomerRepo{})
		_, err := flow.UpdateContractStatus(context.Background(), &dto.UpdateContractStatusRequest{ContractID: 1, Status: "paused"})
		assert.ErrorIs(t, err, ErrInvalidContractStatus)
	})

	t.Run("unknown contract is not found", func(t *testing.T) {
		flow := newTestContractFlow(&stubContractRepo{}, &stubTemplateRepo{}, &stubCustomerRepo{})
		_, err := flow.UpdateContractStatus(context.Background(), &dto.UpdateContractStatusRequest{ContractID: 9, Status: "cancelled"})
		assert.ErrorIs(t, err, ErrContractNotFound)
	})
}

func TestCreateTemplate(t *testing.T) {
	t.Run("creates template", func(t *testing.T) {
		templates := &stubTemplateRepo{}
		flow := newTestContractFlow(&stubContractRepo{}, templates, &stubCustomerRepo{})

		out, err := flow.CreateTemplate(context.Background(), &dto.CreateTemplateRequest{
			Name:      "three-days-before",
			DayOffset: 3,
			Body:      "Ola {{name}}",
		})
		require.NoError(t, err)
		assert.Equal(t, "three-days-before", out.Name)
		assert.True(t, out.IsActive)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		flow := newTestContractFlow(&stubContractRepo{}, &stubTemplateRepo{}, &stubCustomerRepo{})
		_, err := flow.CreateTemplate(context.Background(), &dto.CreateTemplateRequest{Name: "x", Body: ""})
		assert.ErrorIs(t, err, ErrTemplateBodyEmpty)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		templates := &stubTemplateRepo{templates: []*models.MessageTemplate{{ID: 1, Name: "three-days-before"}}}
		flow := newTestContractFlow(&stubContractRepo{}, templates, &stubCustomerRepo{})
		_, err := flow.CreateTemplate(context.Background(), &dto.CreateTemplateRequest{Name: "three-days-before", Body: "x"})
		assert.ErrorIs(t, err, ErrTemplateNameInUse)
	})
}
