// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

var (
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidLine       = errors.New("invalid order line")
	ErrTotalMismatch     = errors.New("total does not match items")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnknownSize       = errors.New("size does not exist for product")
)

var checkoutTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "orders",
		Name:      "checkout_total",
		Help:      "Checkout attempts by outcome.",
	},
	[]string{"result"},
)

// StockError reports which size could not cover the requested quantity.
type StockError struct {
	ProductID int64
	SizeID    int64
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for size %d: requested %d, available %d",
		e.SizeID, e.Requested, e.Available,
	)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Checkout turns the submitted lines into a pending order. The order row,
// its items, the stock decrements and the cart clear commit together or not
// at all.
func (s *Service) Checkout(
	ctx context.Context,
	userID int64,
	req CheckoutRequest,
) (*Order, error) {
	ctx, span := core.StartSpan(ctx, "order.checkout",
		attribute.Int64("user.id", userID),
		attribute.Int("order.lines", len(req.Items)),
	)
	defer span.End()

	order, err := s.checkout(ctx, userID, req)
	checkoutTotal.WithLabelValues(checkoutResult(err)).Inc()
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	core.AddSpanEvent(ctx, "order.placed", attribute.Int64("order.id", order.ID))
	slog.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"user_id", userID,
		"total", order.Total.StringFixed(2),
		"lines", len(order.Items),
	)

	return order, nil
}

func (s *Service) checkout(
	ctx context.Context,
	userID int64,
	req CheckoutRequest,
) (*Order, error) {
	if err := validateLines(req); err != nil {
		return nil, err
	}

	// Ascending size id gives every concurrent checkout the same lock order.
	lines := slices.Clone(req.Items)
	slices.SortStableFunc(lines, func(a, b LineRequest) int {
		switch {
		case a.SizeID < b.SizeID:
			return -1
		case a.SizeID > b.SizeID:
			return 1
		}
		return 0
	})

	order := &Order{
		UserID: userID,
		Total:  req.Total.Round(2),
		Status: StatusPending,
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		for _, line := range lines {
			item, err := takeLine(ctx, tx, order.ID, line)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, *item)
		}

		return tx.ClearCart(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	return order, nil
}

func takeLine(
	ctx context.Context,
	tx Repository,
	orderID int64,
	line LineRequest,
) (*Item, error) {
	snap, ok, err := tx.TakeStock(ctx, line.ProductID, line.SizeID, line.Quantity)
	if err != nil {
		return nil, err
	}

	if !ok {
		available, err := tx.AvailableStock(ctx, line.ProductID, line.SizeID)
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf(
				"size %d of product %d: %w", line.SizeID, line.ProductID, ErrUnknownSize)
		}
		if err != nil {
			return nil, err
		}
		return nil, &StockError{
			ProductID: line.ProductID,
			SizeID:    line.SizeID,
			Requested: line.Quantity,
			Available: available,
		}
	}

	productID, sizeID := line.ProductID, line.SizeID
	item := &Item{
		OrderID:     orderID,
		ProductID:   &productID,
		SizeID:      &sizeID,
		ProductName: snap.ProductName,
		Size:        snap.Size,
		Quantity:    line.Quantity,
		Price:       line.Price.Round(2),
	}
	if err := tx.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func validateLines(req CheckoutRequest) error {
	if len(req.Items) == 0 {
		return ErrEmptyOrder
	}

	sum := decimal.Zero
	for i, line := range req.Items {
		if line.Quantity < 1 || line.Price.IsNegative() {
			return fmt.Errorf("%w: item %d", ErrInvalidLine, i)
		}
		sum = sum.Add(core.Subtotal(line.Price.Round(2), line.Quantity))
	}

	if req.Total.IsNegative() || !sum.Equal(req.Total.Round(2)) {
		return fmt.Errorf("%w: items sum to %s", ErrTotalMismatch, sum.StringFixed(2))
	}

	return nil
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return "placed"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrEmptyOrder),
		errors.Is(err, ErrInvalidLine),
		errors.Is(err, ErrTotalMismatch),
		errors.Is(err, ErrUnknownSize):
		return "invalid"
	default:
		return "error"
	}
}

// MyOrders returns the caller's orders, newest first, with their items.
func (s *Service) MyOrders(ctx context.Context, userID int64) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (s *Service) ListOrders(
	ctx context.Context,
	params ListOrdersParams,
) ([]Order, int, error) {
	orders, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	if err := s.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ItemsByOrder(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	return order, nil
}

// UpdateStatus moves an order to any known status. Cancelling does not
// return stock.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	order.Status = status
	if err := s.repo.UpdateStatus(ctx, order); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order status updated", "order_id", id, "status", status)

	return order, nil
}

func (s *Service) attachItems(ctx context.Context, orders []Order) error {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	items, err := s.repo.ItemsByOrder(ctx, ids)
	if err != nil {
		return err
	}

	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return nil
}
