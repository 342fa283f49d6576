package services

import (
	"context"
	"strings"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	lg        *zap.SugaredLogger
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, lg *zap.SugaredLogger) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		lg:        lg,
	}
}

// ProductInput is the writable part of a product. Price is kept as text so
// JSON numbers and numeric strings are treated alike.
type ProductInput struct {
	Name        string
	Price       string
	Description string
}

// ParsePrice accepts a non-negative decimal number.
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, apperrors.Validation("Price is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, apperrors.Validation("Price must be a number")
	}
	if price.IsNegative() {
		return decimal.Decimal{}, apperrors.Validation("Price must not be negative")
	}
	return price, nil
}

func (in ProductInput) toModel() (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("Product name is invalid")
	}
	price, err := ParsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	return &models.Product{Name: name, Price: price, Description: in.Description}, nil
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates in and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct validates in and overwrites the product with id.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	product, err := in.toModel()
	if err != nil {
		return nil, err
	}
	product.ID = id
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product together with its shipments and announces it.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) (repositories.DeleteResult, error) {
	res, err := s.repo.Delete(ctx, id)
	if err != nil {
		return res, err
	}
	s.lg.Infow("product deleted", "id", id, "deleted_shipments", res.Shipments)
	publishEvent(ctx, s.publisher, s.lg, EventProductDeleted, ProductDeletedPayload{
		ProductID:        id,
		DeletedShipments: res.Shipments,
	})
	return res, nil
}
