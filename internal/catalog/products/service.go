package products

import (
	"context"
	"errors"
	"strings"
)

// StockAdjuster applies a signed stock movement for one product.
type StockAdjuster interface {
	Adjust(ctx context.Context, productID, delta int64) error
}

// Service handles catalog business logic.
type Service struct {
	repo   Repository
	ledger StockAdjuster
}

// NewService builds Service instance.
func NewService(repo Repository, ledger StockAdjuster) *Service {
	return &Service{repo: repo, ledger: ledger}
}

// List returns catalog products.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	return s.repo.List(ctx, activeOnly)
}

// Get fetches a single product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// GetMany fetches products by ID, keyed for snapshot building.
func (s *Service) GetMany(ctx context.Context, ids []int64) (map[int64]Product, error) {
	list, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]Product, len(list))
	for _, p := range list {
		byID[p.ID] = p
	}
	return byID, nil
}

// Create inserts a new product.
func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	product.SKU = strings.TrimSpace(product.SKU)
	product.Name = strings.TrimSpace(product.Name)
	if product.SKU == "" || product.Name == "" {
		return Product{}, errors.New("products: sku and name required")
	}
	if product.Price < 0 {
		return Product{}, errors.New("products: price must be >= 0")
	}
	if product.StockCount < 0 {
		return Product{}, errors.New("products: stock count must be >= 0")
	}
	return s.repo.Create(ctx, product)
}

// Update edits price, naming and threshold. Stock moves only through the
// inventory ledger.
func (s *Service) Update(ctx context.Context, product Product) (Product, error) {
	existing, err := s.repo.Get(ctx, product.ID)
	if err != nil {
		return Product{}, err
	}
	if product.SKU == "" {
		product.SKU = existing.SKU
	}
	if product.Name == "" {
		product.Name = existing.Name
	}
	if product.Price < 0 {
		return Product{}, errors.New("products: price must be >= 0")
	}
	return s.repo.Update(ctx, product)
}

// Delete deactivates a product. Products are never hard-deleted because
// historical order snapshots reference them.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AdjustStock moves stock by delta and returns the refreshed product. The
// ledger rejects moves that would drive stock negative.
func (s *Service) AdjustStock(ctx context.Context, id, delta int64) (Product, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Product{}, err
	}
	if err := s.ledger.Adjust(ctx, id, delta); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id)
}

// ListLowStock returns active products at or below their threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]Product, error) {
	return s.repo.ListLowStock(ctx)
}
