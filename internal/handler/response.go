package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"streamaccts/internal/dto"
	"streamaccts/internal/middleware"
	"streamaccts/internal/model"
)

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, dto.Response{Success: true, Data: data})
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, dto.Response{Success: true, Data: data})
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, dto.Response{Success: true, Message: msg})
}

func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	return nil
}

func caller(c echo.Context) *model.Identity {
	return middleware.Identity(c)
}
