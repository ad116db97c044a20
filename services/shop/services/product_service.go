package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/shoparak/shop-backend/services/shop/models"
	"github.com/shoparak/shop-backend/services/shop/repository"
)

// ProductService defines the interface for catalog business logic.
type ProductService interface {
	ListProducts(ctx context.Context, category string, availableOnly bool) ([]models.Product, *ServiceError)
	GetProduct(ctx context.Context, id int64) (*models.Product, *ServiceError)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError)
	UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, *ServiceError)
	DeleteProduct(ctx context.Context, id int64) *ServiceError
	ListCategories(ctx context.Context) ([]string, *ServiceError)
}

type productServiceImpl struct {
	repo   repository.ProductRepository
	cache  *ProductCache
	logger *zap.Logger
}

// NewProductService wires the catalog service. cache may be nil, in which
// case every read goes to Mongo.
func NewProductService(repo repository.ProductRepository, cache *ProductCache, logger *zap.Logger) ProductService {
	return &productServiceImpl{repo: repo, cache: cache, logger: logger}
}

func (s *productServiceImpl) ListProducts(ctx context.Context, category string, availableOnly bool) ([]models.Product, *ServiceError) {
	if s.cache != nil {
		if products, ok := s.cache.GetProductList(ctx, category, availableOnly); ok {
			return products, nil
		}
	}

	products, err := s.repo.FindAll(ctx, category, availableOnly)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch products"}
	}

	if s.cache != nil {
		s.cache.SetProductListAsync(category, availableOnly, products)
	}
	return products, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id int64) (*models.Product, *ServiceError) {
	if s.cache != nil {
		if product, ok := s.cache.GetProduct(ctx, id); ok {
			return product, nil
		}
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to fetch product", zap.Int64("product_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch product"}
	}

	if s.cache != nil {
		s.cache.SetProductAsync(product)
	}
	return product, nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, *ServiceError) {
	product := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		StockQuantity: req.StockQuantity,
		IsAvailable:   true,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.String("name", req.Name), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create product"}
	}

	if s.cache != nil {
		s.cache.InvalidateProduct(ctx, product.ID)
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, *ServiceError) {
	updates := bson.M{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, &ServiceError{StatusCode: 400, Message: "Price cannot be negative"}
		}
		updates["price"] = *req.Price
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, &ServiceError{StatusCode: 400, Message: "Stock quantity cannot be negative"}
		}
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if len(updates) == 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "No fields to update"}
	}

	matched, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		s.logger.Error("Failed to update product", zap.Int64("product_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update product"}
	}
	if matched == 0 {
		return nil, &ServiceError{StatusCode: 404, Message: "Product not found"}
	}

	if s.cache != nil {
		s.cache.InvalidateProduct(ctx, id)
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to reload updated product", zap.Int64("product_id", id), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch product"}
	}
	return product, nil
}

// DeleteProduct marks the product unavailable. Order history keeps its copy of
// the product name and price, so a hard delete is never needed.
func (s *productServiceImpl) DeleteProduct(ctx context.Context, id int64) *ServiceError {
	matched, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete product", zap.Int64("product_id", id), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete product"}
	}
	if matched == 0 {
		return &ServiceError{StatusCode: 404, Message: "Product not found"}
	}

	if s.cache != nil {
		s.cache.InvalidateProduct(ctx, id)
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *productServiceImpl) ListCategories(ctx context.Context) ([]string, *ServiceError) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		s.logger.Error("Failed to list categories", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch categories"}
	}
	return categories, nil
}
