package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/service"
)

// PaymentHandler handles the gateway token and checkout endpoints.
type PaymentHandler struct {
	base
	checkout service.CheckoutService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(checkout service.CheckoutService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{base: base{logger: logger}, checkout: checkout}
}

// PaymentRequest pays for a cart with a tokenized payment method.
type PaymentRequest struct {
	Nonce string           `json:"nonce" validate:"required"`
	Cart  []model.CartItem `json:"cart" validate:"required,min=1"`
}

// Token godoc
// @Summary Issue a payment gateway client token
// @Tags payment
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} errors.ErrorResponse
// @Router /product/braintree/token [get]
func (h *PaymentHandler) Token(c echo.Context) error {
	token, err := h.checkout.ClientToken(c.Request().Context())
	if err != nil {
		return h.fail(c, err, http.StatusInternalServerError, "Error while generating client token")
	}
	return c.JSON(http.StatusOK, echo.Map{"clientToken": token, "success": true})
}

// Pay godoc
// @Summary Charge the cart and record the order
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PaymentRequest true "Nonce and cart"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /product/braintree/payment [post]
func (h *PaymentHandler) Pay(c echo.Context) error {
	buyerID, err := currentUserID(c)
	if err != nil {
		return h.fail(c, err, http.StatusUnauthorized, "UnAuthorized Access")
	}

	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.Fail("invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apperrors.Fail("nonce and a non-empty cart are required", err))
	}

	if _, err := h.checkout.Pay(c.Request().Context(), buyerID, req.Nonce, req.Cart); err != nil {
		var gwErr *payment.Error
		if apperrors.As(err, &gwErr) {
			return c.JSON(http.StatusInternalServerError, apperrors.Fail(gwErr.Message, err))
		}
		return h.fail(c, err, http.StatusInternalServerError, "Error while processing payment")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
