package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"streamaccts/internal/dto"
	"streamaccts/internal/repository"
	"streamaccts/internal/service"
	"streamaccts/internal/storage"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.productService.List(ctx, repository.ProductFilter{
		Category:   c.QueryParam("category"),
		ActiveOnly: c.QueryParam("active") == "true",
	})
	if err != nil {
		return err
	}

	return ok(c, products)
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.productService.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return ok(c, product)
}

func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.productService.Create(ctx, req)
	if err != nil {
		return err
	}

	return created(c, product)
}

func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.productService.Update(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}

	return ok(c, product)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.productService.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return message(c, "Product deleted successfully")
}

func (h *ProductHandler) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()

	upload, err := readUpload(c, "image")
	if err != nil {
		return err
	}
	if upload == nil {
		return service.Invalid("No image provided")
	}

	url, err := h.productService.UploadImage(ctx, *upload)
	if err != nil {
		return err
	}

	return created(c, dto.ImageUploadResponse{URL: url})
}

// readUpload returns nil when the form has no such file part.
func readUpload(c echo.Context, field string) (*dto.Upload, error) {
	header, err := c.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form").SetInternal(err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		return nil, err
	}

	return &dto.Upload{Filename: header.Filename, Data: data}, nil
}
