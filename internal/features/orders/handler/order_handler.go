package handler

import (
	"errors"
	"net/http"

	"sparkpay-sync/internal/core/logger"
	adapter "sparkpay-sync/internal/features/orders/adapters"
	"sparkpay-sync/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	// service is the OrderService instance.
	service *service.OrderService
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s *service.OrderService) *OrderHandler {
	return &OrderHandler{
		service: s,
	}
}

// ListOrders returns the store orders updated after the given date.
// @Summary List updated orders
// @Description Fetch the orders updated after the given date straight from the store API.
// @Tags orders
// @Produce json
// @Param since query string true "Start date, e.g. 2015-01-01 or 2013-11-29T17:12:00-06:00"
// @Success 200 {array} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	since := c.Query("since")

	orders, err := h.service.ListOrders(c.UserContext(), since)
	if err != nil {
		return h.writeError(c, "Failed to list orders", err)
	}

	return c.Status(http.StatusOK).JSON(orders)
}

// SyncOrders pulls the orders updated since the stored cursor.
// @Summary Run incremental order sync
// @Description Pull every order updated since the last sync and advance the cursor.
// @Tags orders
// @Produce json
// @Success 200 {object} domain.SyncResult
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders/sync [post]
func (h *OrderHandler) SyncOrders(c *fiber.Ctx) error {
	result, err := h.service.Sync(c.UserContext())
	if err != nil {
		return h.writeError(c, "Failed to sync orders", err)
	}

	return c.Status(http.StatusOK).JSON(result)
}

// ResetSync clears the stored sync cursor.
// @Summary Reset order sync cursor
// @Tags orders
// @Success 204
// @Failure 500 {object} ErrorResponse
// @Router /orders/sync [delete]
func (h *OrderHandler) ResetSync(c *fiber.Ctx) error {
	if err := h.service.ResetCursor(c.UserContext()); err != nil {
		return h.writeError(c, "Failed to reset sync cursor", err)
	}

	return c.SendStatus(http.StatusNoContent)
}

// writeError maps service and client errors onto HTTP statuses.
func (h *OrderHandler) writeError(c *fiber.Ctx, logMsg string, err error) error {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		rayID = "unknown"
	}

	status := http.StatusInternalServerError
	msg := "Internal Server Error"

	var parseErr *adapter.DateParseError
	var apiErr *adapter.APIError

	switch {
	case errors.Is(err, service.ErrSinceRequired):
		status = http.StatusBadRequest
		msg = "since query parameter is required"
	case errors.As(err, &parseErr):
		status = http.StatusBadRequest
		msg = parseErr.Error()
	case errors.Is(err, adapter.ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
		msg = adapter.ErrRateLimitExceeded.Error()
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
		msg = apiErr.Error()
	}

	logger.Get().Error(logMsg,
		zap.String("ray_id", rayID),
		zap.Int("status", status),
		zap.Error(err),
	)

	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID,
	})
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}
