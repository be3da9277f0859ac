// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

type Repository interface {
	// InTx runs fn against a repository bound to one transaction. Nested
	// calls reuse the outer transaction.
	InTx(ctx context.Context, fn func(Repository) error) error

	CreateOrder(ctx context.Context, order *Order) error
	TakeStock(ctx context.Context, productID, sizeID int64, quantity int) (*Snapshot, bool, error)
	AvailableStock(ctx context.Context, productID, sizeID int64) (int, error)
	CreateItem(ctx context.Context, item *Item) error
	ClearCart(ctx context.Context, userID int64) error

	Get(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	List(ctx context.Context, params ListOrdersParams) ([]Order, int, error)
	ItemsByOrder(ctx context.Context, orderIDs []int64) (map[int64][]Item, error)
	UpdateStatus(ctx context.Context, order *Order) error
}

type repository struct {
	db  core.DBTX
	txb core.TxBeginner
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, txb: db}
}

func (r *repository) InTx(ctx context.Context, fn func(Repository) error) error {
	if r.txb == nil {
		return fn(r)
	}

	return core.InTx(ctx, r.txb, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) CreateOrder(ctx context.Context, order *Order) error {
	query := `
		INSERT INTO orders (user_id, total, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, order.UserID, order.Total, order.Status).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", core.MapPgError(err))
	}

	return nil
}

// TakeStock decrements a size's stock only when enough is available and
// returns the labels to snapshot. ok is false when nothing was taken.
func (r *repository) TakeStock(
	ctx context.Context,
	productID, sizeID int64,
	quantity int,
) (*Snapshot, bool, error) {
	query := `
		UPDATE product_sizes ps
		SET stock = ps.stock - $3
		FROM products p
		WHERE ps.id = $2
		  AND ps.product_id = $1
		  AND p.id = ps.product_id
		  AND ps.stock >= $3
		RETURNING p.name AS product_name, ps.size`

	var snap Snapshot
	err := r.db.GetContext(ctx, &snap, query, productID, sizeID, quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("take stock: %w", core.MapPgError(err))
	}

	return &snap, true, nil
}

func (r *repository) AvailableStock(
	ctx context.Context,
	productID, sizeID int64,
) (int, error) {
	query := `SELECT stock FROM product_sizes WHERE id = $2 AND product_id = $1`

	var stock int
	if err := r.db.GetContext(ctx, &stock, query, productID, sizeID); err != nil {
		return 0, fmt.Errorf("available stock: %w", core.MapPgError(err))
	}

	return stock, nil
}

func (r *repository) CreateItem(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO order_items (
			order_id, product_id, size_id, product_name, size, quantity, price
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		item.OrderID,
		item.ProductID,
		item.SizeID,
		item.ProductName,
		item.Size,
		item.Quantity,
		item.Price,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("create order item: %w", core.MapPgError(err))
	}

	return nil
}

func (r *repository) ClearCart(ctx context.Context, userID int64) error {
	query := `
		DELETE FROM cart_items ci
		USING carts c
		WHERE c.id = ci.cart_id AND c.user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("clear cart: %w", core.MapPgError(err))
	}

	return nil
}

const orderSelect = `
	SELECT o.id, o.user_id, u.username, o.total, o.status,
	       o.created_at, o.updated_at
	FROM orders o
	JOIN users u ON u.id = o.user_id`

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	var order Order
	if err := r.db.GetContext(ctx, &order, orderSelect+` WHERE o.id = $1`, id); err != nil {
		return nil, fmt.Errorf("get order: %w", core.MapPgError(err))
	}

	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	query := orderSelect + `
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC`

	orders := []Order{}
	if err := r.db.SelectContext(ctx, &orders, query, userID); err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}

	return orders, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListOrdersParams,
) ([]Order, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM orders o WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY o.id DESC
		LIMIT $%d OFFSET $%d`,
		orderSelect, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	orders := []Order{}
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// ItemsByOrder loads the lines of every listed order in one query.
func (r *repository) ItemsByOrder(
	ctx context.Context,
	orderIDs []int64,
) (map[int64][]Item, error) {
	out := make(map[int64][]Item, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, order_id, product_id, size_id, product_name, size,
		       quantity, price
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY order_id, id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("build order items query: %w", err)
	}

	var items []Item
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	for _, it := range items {
		out[it.OrderID] = append(out[it.OrderID], it)
	}

	return out, nil
}

func (r *repository) UpdateStatus(ctx context.Context, order *Order) error {
	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	if err := r.db.GetContext(ctx, &order.UpdatedAt, query, order.ID, order.Status); err != nil {
		return fmt.Errorf("update order status: %w", core.MapPgError(err))
	}

	return nil
}
