// AngelaMos | 2026
// service.go

package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

var (
	ErrNegativePrice = errors.New("price must not be negative")
	ErrUnknownSize   = errors.New("size does not exist for product")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetCart returns the caller's lines, creating an empty cart on first
// access.
func (s *Service) GetCart(ctx context.Context, userID int64) ([]Line, error) {
	if _, err := s.repo.EnsureCart(ctx, userID); err != nil {
		return nil, err
	}

	return s.repo.Lines(ctx, userID)
}

func (s *Service) AddLine(
	ctx context.Context,
	userID int64,
	req AddLineRequest,
) (*Line, error) {
	var price decimal.NullDecimal
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("add cart line: %w", ErrNegativePrice)
		}
		price = decimal.NewNullDecimal(req.Price.Round(2))
	}

	cartID, err := s.repo.EnsureCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	line := &Line{
		CartID:    cartID,
		ProductID: req.ProductID,
		SizeID:    req.SizeID,
		Quantity:  req.Quantity,
	}
	if err := s.repo.AddLine(ctx, line, price); err != nil {
		if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrForeignKey) {
			return nil, fmt.Errorf("%w: %w", ErrUnknownSize, err)
		}
		return nil, err
	}

	return line, nil
}

func (s *Service) UpdateLine(
	ctx context.Context,
	userID, lineID int64,
	quantity int,
) error {
	return s.repo.UpdateLine(ctx, userID, lineID, quantity)
}

func (s *Service) RemoveLine(ctx context.Context, userID, lineID int64) error {
	return s.repo.RemoveLine(ctx, userID, lineID)
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}
