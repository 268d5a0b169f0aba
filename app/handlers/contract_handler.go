package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/redelink/redelink/app/dto"
	businessflow "github.com/redelink/redelink/business_flow"
)

// ContractHandlerInterface defines the contract for contract handlers
type ContractHandlerInterface interface {
	Create(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// ContractHandler handles billing contract HTTP requests
type ContractHandler struct {
	flow      businessflow.ContractFlow
	validator *validator.Validate
}

// NewContractHandler creates a new contract handler
func NewContractHandler(flow businessflow.ContractFlow) *ContractHandler {
	return &ContractHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *ContractHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: &dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ContractHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create binds a subscriber login to a billing contract
// @Summary Create contract
// @Description Creates a billing contract for a customer and subscriber login
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body dto.CreateContractRequest true "Contract data"
// @Success 201 {object} dto.APIResponse{data=dto.ContractDTO} "Contract created"
// @Failure 400 {object} dto.APIResponse "Validation error or undeliverable phone"
// @Failure 404 {object} dto.APIResponse "Customer not found"
// @Failure 409 {object} dto.APIResponse "Subscriber login already bound"
// @Security BearerAuth
// @Router /api/v1/contracts [post]
func (h *ContractHandler) Create(c fiber.Ctx) error {
	var req dto.CreateContractRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.flow.CreateContract(h.createRequestContext(c, "/api/v1/contracts"), &req)
	if err != nil {
		if businessflow.IsInvalidBillingDay(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Billing day must be between 1 and 31", "INVALID_BILLING_DAY", nil)
		}
		if businessflow.IsUndeliverablePhone(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Phone number is undeliverable", "UNDELIVERABLE_PHONE", nil)
		}
		if businessflow.IsCustomerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Customer not found", "CUSTOMER_NOT_FOUND", nil)
		}
		if businessflow.IsCustomerInactive(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Customer is inactive", "CUSTOMER_INACTIVE", nil)
		}
		if err == businessflow.ErrSubscriberLoginInUse {
			return h.ErrorResponse(c, fiber.StatusConflict, "Subscriber login already bound to a contract", "SUBSCRIBER_IN_USE", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create contract", "CONTRACT_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Contract created", result)
}

// UpdateStatus moves a contract between lifecycle states
// @Summary Update contract status
// @Description Moves a contract to active, suspended, or cancelled
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path int true "Contract ID"
// @Param request body dto.UpdateContractStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.ContractDTO} "Contract updated"
// @Failure 404 {object} dto.APIResponse "Contract not found"
// @Security BearerAuth
// @Router /api/v1/contracts/{id}/status [put]
func (h *ContractHandler) UpdateStatus(c fiber.Ctx) error {
	var req dto.UpdateContractStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid contract ID", "INVALID_CONTRACT_ID", nil)
	}
	req.ContractID = uint(id)

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.flow.UpdateContractStatus(h.createRequestContext(c, "/api/v1/contracts/:id/status"), &req)
	if err != nil {
		if businessflow.IsContractNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Contract not found", "CONTRACT_NOT_FOUND", nil)
		}
		if err == businessflow.ErrInvalidContractStatus {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid contract status", "INVALID_CONTRACT_STATUS", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update contract", "CONTRACT_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contract updated", result)
}

// List lists contracts
// @Summary List contracts
// @Description Returns a paginated contract list, optionally filtered by customer and status
// @Tags Contracts
// @Produce json
// @Param customer_id query int false "Filter by customer ID"
// @Param status query string false "Filter by status" Enums(active, suspended, cancelled)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListContractsResponse} "Contracts listed"
// @Security BearerAuth
// @Router /api/v1/contracts [get]
func (h *ContractHandler) List(c fiber.Ctx) error {
	var req dto.ListContractsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.flow.ListContracts(h.createRequestContext(c, "/api/v1/contracts"), &req)
	if err != nil {
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list contracts", "CONTRACT_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Contracts listed", result)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *ContractHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
