package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"streamaccts/internal/dto"
	"streamaccts/internal/model"
	"streamaccts/internal/repository"
	"streamaccts/internal/storage"
)

type ProductService interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]*model.Product, error)
	Get(ctx context.Context, productID string) (*model.Product, error)
	Create(ctx context.Context, req dto.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, productID string, req dto.ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, productID string) error
	UploadImage(ctx context.Context, upload dto.Upload) (string, error)
	Seed(ctx context.Context) (int, error)
}

type productServiceImpl struct {
	productRepo repository.ProductRepository
	uploader    storage.Uploader
}

func NewProductService(productRepo repository.ProductRepository, uploader storage.Uploader) ProductService {
	return &productServiceImpl{
		productRepo: productRepo,
		uploader:    uploader,
	}
}

func (s *productServiceImpl) List(ctx context.Context, filter repository.ProductFilter) ([]*model.Product, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []*model.Product{}
	}
	return products, nil
}

func (s *productServiceImpl) Get(ctx context.Context, productID string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFoundAs(err, "Product", "find product")
	}
	return product, nil
}

func (s *productServiceImpl) Create(ctx context.Context, req dto.ProductRequest) (*model.Product, error) {
	if blank(req.Name) || blank(req.Description) || blank(req.Category) || req.Price == nil || req.StockCount == nil {
		return nil, Invalid("Missing required fields")
	}
	if *req.Price <= 0 {
		return nil, Invalid("Price must be greater than 0")
	}
	if *req.StockCount < 0 {
		return nil, Invalid("Stock count cannot be negative")
	}

	now := time.Now()
	product := &model.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(*req.Name),
		Description: strings.TrimSpace(*req.Description),
		Price:       *req.Price,
		StockCount:  *req.StockCount,
		Category:    strings.TrimSpace(*req.Category),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

// Update applies only the fields present in the request.
func (s *productServiceImpl) Update(ctx context.Context, productID string, req dto.ProductRequest) (*model.Product, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if blank(req.Name) {
			return nil, Invalid("Name cannot be empty")
		}
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, Invalid("Price must be greater than 0")
		}
		product.Price = *req.Price
	}
	if req.StockCount != nil {
		if *req.StockCount < 0 {
			return nil, Invalid("Stock count cannot be negative")
		}
		product.StockCount = *req.StockCount
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, notFoundAs(err, "Product", "save product")
	}

	return product, nil
}

func (s *productServiceImpl) Delete(ctx context.Context, productID string) error {
	if err := s.productRepo.SoftDelete(ctx, productID); err != nil {
		return notFoundAs(err, "Product", "delete product")
	}
	return nil
}

func (s *productServiceImpl) UploadImage(ctx context.Context, upload dto.Upload) (string, error) {
	if len(upload.Data) == 0 {
		return "", Invalid("No image provided")
	}

	contentType, ext, err := storage.DetectImage(upload.Data)
	if err != nil {
		return "", Invalid(err.Error())
	}

	data, err := storage.ShrinkImage(upload.Data, contentType)
	if err != nil {
		return "", Invalid("Image could not be processed")
	}

	url, err := s.uploader.Upload(ctx, "products/"+uuid.NewString()+ext, contentType, data)
	if err != nil {
		return "", fmt.Errorf("upload product image: %w", err)
	}
	return url, nil
}

// Seed loads the starter catalog. Existing products keep their ids and are
// left alone.
func (s *productServiceImpl) Seed(ctx context.Context) (int, error) {
	products := SampleProducts(time.Now())
	if err := s.productRepo.Seed(ctx, products); err != nil {
		return 0, fmt.Errorf("seed products: %w", err)
	}
	return len(products), nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
