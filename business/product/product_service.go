package product

import (
	"context"
	"fmt"
	"myUserCatalog/domain"
	"myUserCatalog/pkg/logger"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product, fields domain.ProductFields) error
	Delete(ctx context.Context, product *domain.Product) error
}

type productService struct {
	productRepo ProductRepository
}

func NewProductService(productRepo ProductRepository) *productService {
	return &productService{
		productRepo: productRepo,
	}
}

func (s *productService) GetProductByID(ctx context.Context, id uint) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find product by id", "id", id, "error", err)
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create product")
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("Failed to create product", "error", err)
		return nil, err
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, fields domain.ProductFields) (*domain.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product, fields); err != nil {
		logger.Error("Failed to update product", "id", id, "error", err)
		return nil, err
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, product); err != nil {
		logger.Error("Failed to delete product", "id", id, "error", err)
		return err
	}

	return nil
}
