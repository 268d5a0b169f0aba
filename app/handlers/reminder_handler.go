package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/redelink/redelink/app/dto"
	businessflow "github.com/redelink/redelink/business_flow"
	"github.com/redelink/redelink/utils"
)

// ReminderHandlerInterface defines the contract for reminder handlers
type ReminderHandlerInterface interface {
	RunPass(c fiber.Ctx) error
	ListRuns(c fiber.Ctx) error
	CreateTemplate(c fiber.Ctx) error
	ListTemplates(c fiber.Ctx) error
}

// ReminderHandler handles billing reminder HTTP requests
type ReminderHandler struct {
	reminderFlow businessflow.ReminderFlow
	contractFlow businessflow.ContractFlow
	validator    *validator.Validate
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminderFlow businessflow.ReminderFlow, contractFlow businessflow.ContractFlow) *ReminderHandler {
	return &ReminderHandler{
		reminderFlow: reminderFlow,
		contractFlow: contractFlow,
		validator:    validator.New(),
	}
}

func (h *ReminderHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: &dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ReminderHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RunPass triggers the reminder pass for a date
// @Summary Run reminder pass
// @Description Runs the billing reminder pass for the given date, defaulting to the current UTC date. Returns 409 when the pass already ran.
// @Tags Reminders
// @Accept json
// @Produce json
// @Param request body dto.RunPassRequest false "Optional pass date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.ReminderPassRunDTO} "Pass completed"
// @Failure 400 {object} dto.APIResponse "Invalid date"
// @Failure 409 {object} dto.APIResponse "Pass already ran for the date"
// @Failure 503 {object} dto.APIResponse "Store unavailable"
// @Security BearerAuth
// @Router /api/v1/reminders/run [post]
func (h *ReminderHandler) RunPass(c fiber.Ctx) error {
	// Manual passes can take a while on large contract bases.
	ctx := createRequestContextWithTimeout(c, "/api/v1/reminders/run", 5*time.Minute)

	passTime := utils.UTCNow()
	if len(c.Body()) > 0 {
		var req dto.RunPassRequest
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
		if err := h.validator.Struct(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
		}
		if req.Date != "" {
			parsed, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", "INVALID_DATE", nil)
			}
			passTime = parsed
		}
	}

	run, err := h.reminderFlow.RunPass(ctx, passTime)
	if err != nil {
		if businessflow.IsPassAlreadyRan(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Reminder pass already ran for this date", "PASS_ALREADY_RAN", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to run reminder pass", "PASS_FAILED", nil)
	}

	result := businessflow.ToReminderPassRunDTO(run)
	return h.SuccessResponse(c, fiber.StatusOK, "Reminder pass completed", result)
}

// ListRuns lists reminder pass history
// @Summary List reminder pass runs
// @Description Returns past reminder pass summaries, newest first
// @Tags Reminders
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListPassRunsResponse} "Runs listed"
// @Failure 503 {object} dto.APIResponse "Store unavailable"
// @Security BearerAuth
// @Router /api/v1/reminders/runs [get]
func (h *ReminderHandler) ListRuns(c fiber.Ctx) error {
	var req dto.ListPassRunsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.reminderFlow.ListPassRuns(h.createRequestContext(c, "/api/v1/reminders/runs"), &req)
	if err != nil {
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list reminder runs", "RUNS_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Reminder runs listed", result)
}

// CreateTemplate adds a reminder template
// @Summary Create message template
// @Description Adds a reminder template to the catalog
// @Tags Reminders
// @Accept json
// @Produce json
// @Param request body dto.CreateTemplateRequest true "Template definition"
// @Success 201 {object} dto.APIResponse{data=dto.MessageTemplateDTO} "Template created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Template name already exists"
// @Security BearerAuth
// @Router /api/v1/reminders/templates [post]
func (h *ReminderHandler) CreateTemplate(c fiber.Ctx) error {
	var req dto.CreateTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.contractFlow.CreateTemplate(h.createRequestContext(c, "/api/v1/reminders/templates"), &req)
	if err != nil {
		if businessflow.IsTemplateNameInUse(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Template name already exists", "TEMPLATE_NAME_IN_USE", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create template", "TEMPLATE_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Template created", result)
}

// ListTemplates lists the reminder template catalog
// @Summary List message templates
// @Description Returns the reminder template catalog ordered by day offset
// @Tags Reminders
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageTemplateDTO} "Templates listed"
// @Failure 503 {object} dto.APIResponse "Store unavailable"
// @Security BearerAuth
// @Router /api/v1/reminders/templates [get]
func (h *ReminderHandler) ListTemplates(c fiber.Ctx) error {
	result, err := h.contractFlow.ListTemplates(h.createRequestContext(c, "/api/v1/reminders/templates"))
	if err != nil {
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list templates", "TEMPLATE_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Templates listed", result)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *ReminderHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
