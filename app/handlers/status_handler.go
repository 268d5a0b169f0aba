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

// StatusHandlerInterface defines the contract for subscriber status handlers
type StatusHandlerInterface interface {
	List(c fiber.Ctx) error
	History(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// StatusHandler handles subscriber status HTTP requests
type StatusHandler struct {
	flow      businessflow.SubscriberStatusFlow
	validator *validator.Validate
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(flow businessflow.SubscriberStatusFlow) *StatusHandler {
	return &StatusHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *StatusHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: &dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *StatusHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *StatusHandler) bindListRequest(c fiber.Ctx) (*dto.SubscriberStatusListRequest, error) {
	var req dto.SubscriberStatusListRequest
	if err := c.Bind().Query(&req); err != nil {
		return nil, err
	}
	if err := h.validator.Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// List subscriber statuses
// @Summary List subscriber connection statuses
// @Description Returns one row per subscriber with its latest accounting event, online flag, and any stale open sessions
// @Tags Subscribers
// @Produce json
// @Param search query string false "Search username, framed IP, or calling station"
// @Param online query string false "Filter by connection state" Enums(online, offline)
// @Param nas_ip query string false "Filter by NAS IP address"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.SubscriberStatusListResponse} "Statuses listed"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 503 {object} dto.APIResponse "Accounting store unavailable"
// @Security BearerAuth
// @Router /api/v1/subscribers/status [get]
func (h *StatusHandler) List(c fiber.Ctx) error {
	req, err := h.bindListRequest(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.flow.ListStatuses(h.createRequestContext(c, "/api/v1/subscribers/status"), req)
	if err != nil {
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Accounting store unavailable", "STORE_UNAVAILABLE", nil)
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "INVALID_PAGINATION", err.Error())
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list subscriber statuses", "STATUS_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Subscriber statuses listed", result)
}

// History lists a subscriber's recent sessions
// @Summary Subscriber session history
// @Description Returns a subscriber's accounting events newest first
// @Tags Subscribers
// @Produce json
// @Param username path string true "Subscriber login"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.SessionHistoryResponse} "History listed"
// @Failure 404 {object} dto.APIResponse "Subscriber not found"
// @Failure 503 {object} dto.APIResponse "Accounting store unavailable"
// @Security BearerAuth
// @Router /api/v1/subscribers/{username}/history [get]
func (h *StatusHandler) History(c fiber.Ctx) error {
	var req dto.SessionHistoryRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	req.Username = c.Params("username")
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	result, err := h.flow.History(h.createRequestContext(c, "/api/v1/subscribers/:username/history"), &req)
	if err != nil {
		if businessflow.IsSubscriberNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Subscriber not found", "SUBSCRIBER_NOT_FOUND", nil)
		}
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Accounting store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load session history", "HISTORY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Session history listed", result)
}

// Export downloads the filtered status list as XLSX
// @Summary Export subscriber statuses
// @Description Renders the filtered status list as an XLSX workbook
// @Tags Subscribers
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param search query string false "Search username, framed IP, or calling station"
// @Param online query string false "Filter by connection state" Enums(online, offline)
// @Param nas_ip query string false "Filter by NAS IP address"
// @Success 200 {file} file "XLSX workbook"
// @Failure 503 {object} dto.APIResponse "Accounting store unavailable"
// @Security BearerAuth
// @Router /api/v1/subscribers/status/export [get]
func (h *StatusHandler) Export(c fiber.Ctx) error {
	req, err := h.bindListRequest(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	// Exports can outlive the default request timeout on large logs.
	ctx := createRequestContextWithTimeout(c, "/api/v1/subscribers/status/export", 2*time.Minute)
	payload, err := h.flow.ExportStatuses(ctx, req)
	if err != nil {
		if businessflow.IsStoreUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Accounting store unavailable", "STORE_UNAVAILABLE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export subscriber statuses", "STATUS_EXPORT_FAILED", nil)
	}

	filename := "subscribers-" + utils.UTCNow().Format("20060102-150405") + ".xlsx"
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(payload)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *StatusHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
