package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"streamaccts/internal/dto"
	"streamaccts/internal/service"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) CreateStripeIntent(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AmountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.paymentService.CreateStripeIntent(ctx, caller(c), req.Amount)
	if err != nil {
		return err
	}

	return ok(c, result)
}

func (h *PaymentHandler) CreatePaypalOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AmountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.paymentService.CreatePaypalOrder(ctx, caller(c), req.Amount)
	if err != nil {
		return err
	}

	return ok(c, result)
}

func (h *PaymentHandler) CapturePaypalOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PaypalCaptureRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.paymentService.CapturePaypalOrder(ctx, req.OrderID)
	if err != nil {
		return err
	}

	return ok(c, result)
}

func (h *PaymentHandler) BraintreeClientToken(c echo.Context) error {
	ctx := c.Request().Context()

	token, err := h.paymentService.BraintreeClientToken(ctx)
	if err != nil {
		return err
	}

	return ok(c, dto.BraintreeTokenResponse{ClientToken: token})
}

func (h *PaymentHandler) BraintreeCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BraintreeCheckoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.paymentService.BraintreeCheckout(ctx, caller(c), req)
	if err != nil {
		return err
	}

	return ok(c, result)
}

func (h *PaymentHandler) Fees(c echo.Context) error {
	amount, err := decimal.NewFromString(c.QueryParam("amount"))
	if err != nil {
		return service.Invalid("Invalid amount")
	}

	comparison, err := h.paymentService.Fees(amount)
	if err != nil {
		return err
	}

	return ok(c, comparison)
}
