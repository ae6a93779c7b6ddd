package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/repository"
)

// ProductService handles product admin logic
type ProductService interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, models.PaginationResult, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	productRepo repository.ProductRepository
	options     OptionService
	logger      *slog.Logger
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, options OptionService, logger *slog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		options:     options,
		logger:      logger,
	}
}

// Create creates a new product and drops the product dropdown cache
func (s *productService) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error("failed to create product",
			slog.String("name", product.Name),
			slog.String("error", err.Error()),
		)
		return nil, models.ClassifyError(err)
	}

	s.options.Invalidate(ctx, models.OptionKindProduct, product.OrganizationID)

	s.logger.Info("product created",
		slog.Int64("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// GetByID retrieves a product by ID
func (s *productService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// List retrieves products with pagination
func (s *productService) List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, models.PaginationResult, error) {
	products, totalCount, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, models.PaginationResult{}, fmt.Errorf("failed to list products: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	pagination := models.NewPaginationResult(filter.Page, filter.PageSize, totalCount)

	return products, pagination, nil
}

// Update updates an existing product and drops the product dropdown cache
func (s *productService) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		s.logger.Error("failed to update product",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		return nil, models.ClassifyError(err)
	}

	s.options.Invalidate(ctx, models.OptionKindProduct, product.OrganizationID)

	return product, nil
}

// Delete removes a product
func (s *productService) Delete(ctx context.Context, id int64) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete product",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
		return models.ClassifyError(err)
	}

	s.options.Invalidate(ctx, models.OptionKindProduct, product.OrganizationID)

	s.logger.Info("product deleted", slog.Int64("product_id", id))
	return nil
}
