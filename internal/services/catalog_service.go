package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/babycare/storefront/internal/domain/product"
)

type ProductStore interface {
	Create(ctx context.Context, p product.Product) error
	List(ctx context.Context, q product.ListQuery) ([]product.Product, error)
	GetByID(ctx context.Context, id string) (product.Product, error)
}

type CatalogService struct {
	products ProductStore
	now      func() time.Time
}

func NewCatalogService(products ProductStore) *CatalogService {
	return &CatalogService{
		products: products,
		now:      time.Now,
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, req product.CreateProductRequest) (product.InsertResult, error) {
	p := product.NewFromCreateRequest(req, s.now())

	err := s.products.Create(ctx, p)

	if err != nil {
		return product.InsertResult{}, fmt.Errorf("create product: %w", err)
	}

	return product.InsertResult{Acknowledged: true, InsertedID: p.ID}, nil
}

// ListProducts runs the filter/sort/limit query encoded in the request's query string.
func (s *CatalogService) ListProducts(ctx context.Context, values url.Values) ([]product.Product, error) {
	q, err := product.ParseListQuery(values)

	if err != nil {
		return nil, err
	}

	return s.products.List(ctx, q)
}

// GetProduct returns product.ErrInvalidID for malformed ids and product.ErrNotFound
// when nothing matches; the caller decides how a miss is presented.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (product.Product, error) {
	if !product.ValidID(id) {
		return product.Product{}, product.ErrInvalidID
	}

	return s.products.GetByID(ctx, id)
}
