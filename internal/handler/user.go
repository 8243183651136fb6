package handler

import (
	"github.com/labstack/echo/v4"

	"streamaccts/internal/dto"
	"streamaccts/internal/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.userService.Verify(ctx, req.Token)
	if err != nil {
		return err
	}

	return ok(c, user)
}

func (h *UserHandler) SetClaims(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SetClaimsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.userService.SetClaims(ctx, req.UID, req.Claims); err != nil {
		return err
	}

	return message(c, "Custom claims set successfully")
}

func (h *UserHandler) Profile(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userService.Profile(ctx, caller(c))
	if err != nil {
		return err
	}

	return ok(c, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(ctx, caller(c), req.DisplayName)
	if err != nil {
		return err
	}

	return ok(c, user)
}

func (h *UserHandler) SetAdmin(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SetAdminRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.IsAdmin == nil {
		return service.Invalid("isAdmin is required")
	}

	if err := h.userService.SetAdmin(ctx, c.Param("userId"), *req.IsAdmin); err != nil {
		return err
	}

	return message(c, "Admin status updated")
}
