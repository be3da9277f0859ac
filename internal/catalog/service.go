// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

var (
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrUnknownCategory = errors.New("category does not exist")
	ErrEmptyUpdate     = errors.New("no fields to update")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListProducts returns one page of products, each with its sizes.
func (s *Service) ListProducts(
	ctx context.Context,
	params ListProductsParams,
) ([]Product, int, error) {
	products, total, err := s.repo.ListProducts(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	sizes, err := s.repo.SizesByProduct(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	for i := range products {
		products[i].Sizes = sizes[products[i].ID]
	}

	return products, total, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	sizes, err := s.repo.SizesByProduct(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	product.Sizes = sizes[id]

	return product, nil
}

func (s *Service) CreateProduct(
	ctx context.Context,
	req CreateProductRequest,
) (*Product, error) {
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("create product: %w", ErrNegativePrice)
	}

	product := &Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price.Round(2),
		CategoryID:  req.CategoryID,
	}
	for _, sr := range req.Sizes {
		product.Sizes = append(product.Sizes, Size{
			Label: strings.TrimSpace(sr.Size),
			Stock: *sr.Stock,
		})
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, categoryError(err)
	}

	return s.GetProduct(ctx, product.ID)
}

func (s *Service) UpdateProduct(
	ctx context.Context,
	id int64,
	req UpdateProductRequest,
) (*Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("update product: %w", ErrNegativePrice)
		}
		product.Price = req.Price.Round(2)
	}
	switch {
	case req.ClearCategory:
		product.CategoryID = nil
	case req.CategoryID != nil:
		product.CategoryID = req.CategoryID
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, categoryError(err)
	}

	return s.GetProduct(ctx, id)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) ListSizes(ctx context.Context, productID int64) ([]Size, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	sizes, err := s.repo.SizesByProduct(ctx, []int64{productID})
	if err != nil {
		return nil, err
	}

	if sizes[productID] == nil {
		return []Size{}, nil
	}
	return sizes[productID], nil
}

func (s *Service) AddSize(
	ctx context.Context,
	productID int64,
	req SizeRequest,
) (*Size, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	size := &Size{
		ProductID: productID,
		Label:     strings.TrimSpace(req.Size),
		Stock:     *req.Stock,
	}

	if err := s.repo.CreateSize(ctx, size); err != nil {
		if errors.Is(err, core.ErrForeignKey) {
			return nil, fmt.Errorf("add size: %w", core.ErrNotFound)
		}
		return nil, err
	}

	return size, nil
}

// UpdateSize renames a size or sets its absolute stock level.
func (s *Service) UpdateSize(
	ctx context.Context,
	id int64,
	req UpdateSizeRequest,
) (*Size, error) {
	if req.Size == nil && req.Stock == nil {
		return nil, fmt.Errorf("update size: %w", ErrEmptyUpdate)
	}

	var label *string
	if req.Size != nil {
		trimmed := strings.TrimSpace(*req.Size)
		label = &trimmed
	}

	return s.repo.UpdateSize(ctx, id, label, req.Stock)
}

func (s *Service) DeleteSize(ctx context.Context, id int64) error {
	return s.repo.DeleteSize(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	category := &Category{Name: strings.TrimSpace(name)}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *Service) RenameCategory(
	ctx context.Context,
	id int64,
	name string,
) (*Category, error) {
	category := &Category{ID: id, Name: strings.TrimSpace(name)}
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func categoryError(err error) error {
	if errors.Is(err, core.ErrForeignKey) {
		return fmt.Errorf("%w: %w", ErrUnknownCategory, err)
	}
	return err
}
