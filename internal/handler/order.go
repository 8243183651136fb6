package handler

import (
	"github.com/labstack/echo/v4"

	"streamaccts/internal/dto"
	"streamaccts/internal/service"
)

type OrderHandler struct {
	orderService       service.OrderService
	fulfillmentService service.FulfillmentService
	statsService       service.StatsService
}

func NewOrderHandler(
	orderService service.OrderService,
	fulfillmentService service.FulfillmentService,
	statsService service.StatsService,
) *OrderHandler {
	return &OrderHandler{
		orderService:       orderService,
		fulfillmentService: fulfillmentService,
		statsService:       statsService,
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.Create(ctx, caller(c), req)
	if err != nil {
		return err
	}

	return created(c, order)
}

func (h *OrderHandler) ListForUser(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.orderService.ListForUser(ctx, caller(c), c.Param("userId"))
	if err != nil {
		return err
	}

	return ok(c, orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.Get(ctx, caller(c), c.Param("id"))
	if err != nil {
		return err
	}

	return ok(c, order)
}

func (h *OrderHandler) SetUserMessage(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UserMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.orderService.SetUserMessage(ctx, caller(c), c.Param("id"), req.UserMessage); err != nil {
		return err
	}

	return message(c, "Message added to order")
}

func (h *OrderHandler) ListAll(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.orderService.ListAll(ctx)
	if err != nil {
		return err
	}

	return ok(c, orders)
}

func (h *OrderHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.statsService.Dashboard(ctx)
	if err != nil {
		return err
	}

	return ok(c, stats)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.orderService.UpdateStatus(ctx, c.Param("id"), req.Status); err != nil {
		return err
	}

	return message(c, "Order status updated")
}

func (h *OrderHandler) SetAdminResponse(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AdminResponseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.orderService.SetAdminResponse(ctx, c.Param("id"), req.AdminResponse); err != nil {
		return err
	}

	return message(c, "Admin response added")
}

// Fulfill reads a multipart form: email, password, additionalInfo, notes,
// accountTested and the screenshot file.
func (h *OrderHandler) Fulfill(c echo.Context) error {
	ctx := c.Request().Context()

	screenshot, err := readUpload(c, "screenshot")
	if err != nil {
		return err
	}

	req := dto.FulfillRequest{
		Email:          c.FormValue("email"),
		Password:       c.FormValue("password"),
		AdditionalInfo: c.FormValue("additionalInfo"),
		Notes:          c.FormValue("notes"),
		AccountTested:  c.FormValue("accountTested") == "true",
		Screenshot:     screenshot,
	}

	order, err := h.fulfillmentService.Fulfill(ctx, caller(c), c.Param("id"), req)
	if err != nil {
		return err
	}

	return ok(c, order)
}
