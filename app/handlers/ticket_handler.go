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

// TicketHandlerInterface defines the contract for ticket handlers
type TicketHandlerInterface interface {
	Create(c fiber.Ctx) error
	Reply(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// TicketHandler handles ticket-related HTTP requests
type TicketHandler struct {
	flow      businessflow.TicketFlow
	validator *validator.Validate
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(flow businessflow.TicketFlow) *TicketHandler {
	return &TicketHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *TicketHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: &dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *TicketHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create opens a support ticket
// @Summary Create ticket
// @Description Opens a support ticket for a customer
// @Tags Tickets
// @Accept json
// @Produce json
// @Param request body dto.CreateTicketRequest true "Ticket data"
// @Success 201 {object} dto.APIResponse{data=dto.TicketDTO} "Ticket created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Customer not found"
// @Security BearerAuth
// @Router /api/v1/tickets [post]
func (h *TicketHandler) Create(c fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.flow.CreateTicket(h.createRequestContext(c, "/api/v1/tickets"), &req)
	if err != nil {
		if businessflow.IsCustomerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Customer not found", "CUSTOMER_NOT_FOUND", nil)
		}
		if err == businessflow.ErrTicketTitleEmpty || err == businessflow.ErrTicketContentEmpty {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Title and content are required", "INVALID_TICKET", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create ticket", "TICKET_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Ticket created successfully", result)
}

// Reply appends an operator reply to a ticket conversation
// @Summary Reply to ticket
// @Description Appends an operator reply to an existing ticket conversation
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param request body dto.ReplyTicketRequest true "Reply content"
// @Success 201 {object} dto.APIResponse{data=dto.TicketDTO} "Reply created"
// @Failure 404 {object} dto.APIResponse "Ticket not found"
// @Security BearerAuth
// @Router /api/v1/tickets/{id}/reply [post]
func (h *TicketHandler) Reply(c fiber.Ctx) error {
	var req dto.ReplyTicketRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid ticket ID", "INVALID_TICKET_ID", nil)
	}
	req.TicketID = uint(id)

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.flow.ReplyTicket(h.createRequestContext(c, "/api/v1/tickets/:id/reply"), &req)
	if err != nil {
		if businessflow.IsTicketNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Ticket not found", "TICKET_NOT_FOUND", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reply to ticket", "TICKET_REPLY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Reply created successfully", result)
}

// List lists tickets
// @Summary List tickets
// @Description Returns a paginated ticket list, optionally filtered by customer
// @Tags Tickets
// @Produce json
// @Param customer_id query int false "Filter by customer ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListTicketsResponse} "Tickets listed"
// @Security BearerAuth
// @Router /api/v1/tickets [get]
func (h *TicketHandler) List(c fiber.Ctx) error {
	var req dto.ListTicketsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.flow.ListTickets(h.createRequestContext(c, "/api/v1/tickets"), &req)
	if err != nil {
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list tickets", "TICKET_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tickets listed", result)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *TicketHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
