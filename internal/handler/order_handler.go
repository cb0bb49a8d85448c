package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
	"storefront/internal/service"
)

// OrderHandler serves order history and status updates.
type OrderHandler struct {
	base
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{base: base{logger: logger}, orderService: orderService}
}

// OrderStatusRequest sets an order's status.
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Orders godoc
// @Summary List the signed-in buyer's orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Order
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/orders [get]
func (h *OrderHandler) Orders(c echo.Context) error {
	buyerID, err := currentUserID(c)
	if err != nil {
		return h.fail(c, err, http.StatusUnauthorized, "UnAuthorized Access")
	}
	orders, err := h.orderService.BuyerOrders(c.Request().Context(), buyerID)
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error While Getting Orders")
	}
	return c.JSON(http.StatusOK, orders)
}

// AllOrders godoc
// @Summary List every order, newest first
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Order
// @Router /auth/all-orders [get]
func (h *OrderHandler) AllOrders(c echo.Context) error {
	orders, err := h.orderService.AllOrders(c.Request().Context())
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error While Getting Orders")
	}
	return c.JSON(http.StatusOK, orders)
}

// SetStatus godoc
// @Summary Overwrite an order's status
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orderId path string true "Order ID"
// @Param request body OrderStatusRequest true "New status"
// @Success 200 {object} model.Order
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/order-status/{orderId} [put]
func (h *OrderHandler) SetStatus(c echo.Context) error {
	orderID, err := paramID(c, "orderId")
	if err != nil {
		return h.fail(c, err, http.StatusBadRequest, "Invalid order id")
	}

	var req OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.Fail("invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.Fail("Status is required", err))
	}

	order, err := h.orderService.SetStatus(c.Request().Context(), orderID, req.Status)
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error While Updating Order")
	}
	return c.JSON(http.StatusOK, order)
}
