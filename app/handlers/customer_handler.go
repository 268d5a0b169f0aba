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

// CustomerHandlerInterface defines the contract for customer handlers
type CustomerHandlerInterface interface {
	Create(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	flow      businessflow.CustomerFlow
	validator *validator.Validate
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(flow businessflow.CustomerFlow) *CustomerHandler {
	return &CustomerHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *CustomerHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: &dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CustomerHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create registers a customer
// @Summary Create customer
// @Description Registers a new customer record
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerRequest true "Customer data"
// @Success 201 {object} dto.APIResponse{data=dto.CustomerDTO} "Customer created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Document or email already exists"
// @Security BearerAuth
// @Router /api/v1/customers [post]
func (h *CustomerHandler) Create(c fiber.Ctx) error {
	var req dto.CreateCustomerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.flow.CreateCustomer(h.createRequestContext(c, "/api/v1/customers"), &req)
	if err != nil {
		if businessflow.IsDocumentAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Document already exists", "DOCUMENT_EXISTS", nil)
		}
		if businessflow.IsEmailAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_EXISTS", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create customer", "CUSTOMER_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Customer created", result)
}

// Get loads one customer
// @Summary Get customer
// @Description Loads a customer by ID
// @Tags Customers
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {object} dto.APIResponse{data=dto.CustomerDTO} "Customer found"
// @Failure 404 {object} dto.APIResponse "Customer not found"
// @Security BearerAuth
// @Router /api/v1/customers/{id} [get]
func (h *CustomerHandler) Get(c fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid customer ID", "INVALID_CUSTOMER_ID", nil)
	}

	result, err := h.flow.GetCustomer(h.createRequestContext(c, "/api/v1/customers/:id"), uint(id))
	if err != nil {
		if businessflow.IsCustomerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Customer not found", "CUSTOMER_NOT_FOUND", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load customer", "CUSTOMER_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Customer found", result)
}

// List lists customers
// @Summary List customers
// @Description Returns a paginated customer list, optionally filtered by search
// @Tags Customers
// @Produce json
// @Param search query string false "Search name, email, or phone"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListCustomersResponse} "Customers listed"
// @Security BearerAuth
// @Router /api/v1/customers [get]
func (h *CustomerHandler) List(c fiber.Ctx) error {
	var req dto.ListCustomersRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.flow.ListCustomers(h.createRequestContext(c, "/api/v1/customers"), &req)
	if err != nil {
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list customers", "CUSTOMER_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Customers listed", result)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *CustomerHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
