package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/pagination"
)

// Service defines vendor catalog operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductView, error)
	UpdateProduct(ctx context.Context, input UpdateProductInput) error
	DeactivateProduct(ctx context.Context, productID, vendorID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductView, error)
	ListVendorProducts(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*ProductList, error)
	ListCatalog(ctx context.Context, params pagination.Params) (*ProductList, error)
}

type service struct {
	repo Repository
}

// NewService builds a products service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductView, error) {
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "vendor identity missing")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.Price.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.CommissionRate.IsNegative() || input.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be within [0,1]")
	}

	row := &models.Product{
		VendorID:       input.VendorID,
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		Stock:          input.Stock,
		CommissionRate: input.CommissionRate,
		IsActive:       true,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	view := toView(created)
	return &view, nil
}

func (s *service) UpdateProduct(ctx context.Context, input UpdateProductInput) error {
	product, err := s.findOwned(ctx, input.ProductID, input.VendorID)
	if err != nil {
		return err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if *input.Name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
		}
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.LessThanOrEqual(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price"] = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		updates["stock"] = *input.Stock
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.repo.Update(ctx, product.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return nil
}

func (s *service) DeactivateProduct(ctx context.Context, productID, vendorID uuid.UUID) error {
	product, err := s.findOwned(ctx, productID, vendorID)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return nil
	}
	if err := s.repo.Update(ctx, product.ID, map[string]any{"is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductView, error) {
	product, err := s.repo.Find(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	view := toView(product)
	return &view, nil
}

func (s *service) ListVendorProducts(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*ProductList, error) {
	list, err := s.repo.ListByVendor(ctx, vendorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor products")
	}
	return list, nil
}

func (s *service) ListCatalog(ctx context.Context, params pagination.Params) (*ProductList, error) {
	list, err := s.repo.ListActive(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog")
	}
	return list, nil
}

func (s *service) findOwned(ctx context.Context, productID, vendorID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "vendor identity missing")
	}
	product, err := s.repo.Find(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.VendorID != vendorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to vendor")
	}
	return product, nil
}

func toView(product *models.Product) ProductView {
	return ProductView{
		ID:             product.ID,
		VendorID:       product.VendorID,
		Name:           product.Name,
		Description:    product.Description,
		Price:          product.Price,
		Stock:          product.Stock,
		CommissionRate: product.CommissionRate,
		IsActive:       product.IsActive,
		CreatedAt:      product.CreatedAt,
	}
}
