// AngelaMos | 2026
// repository.go

package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

type Repository interface {
	EnsureCart(ctx context.Context, userID int64) (int64, error)
	Lines(ctx context.Context, userID int64) ([]Line, error)
	AddLine(ctx context.Context, line *Line, price decimal.NullDecimal) error
	UpdateLine(ctx context.Context, userID, lineID int64, quantity int) error
	RemoveLine(ctx context.Context, userID, lineID int64) error
	Clear(ctx context.Context, userID int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// EnsureCart returns the user's cart id, creating the cart on first use.
func (r *repository) EnsureCart(ctx context.Context, userID int64) (int64, error) {
	query := `
		INSERT INTO carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`

	var id int64
	if err := r.db.GetContext(ctx, &id, query, userID); err != nil {
		return 0, fmt.Errorf("ensure cart: %w", core.MapPgError(err))
	}

	return id, nil
}

func (r *repository) Lines(ctx context.Context, userID int64) ([]Line, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.size_id, ci.quantity,
		       ci.price, p.name AS product_name, ps.size
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN products p ON p.id = ci.product_id
		JOIN product_sizes ps ON ps.id = ci.size_id
		WHERE c.user_id = $1
		ORDER BY ci.id`

	lines := []Line{}
	if err := r.db.SelectContext(ctx, &lines, query, userID); err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}

	return lines, nil
}

// AddLine inserts the line or adds to the quantity of an existing line for
// the same product and size. The size must belong to the product. A null
// price snapshots the product's current price.
func (r *repository) AddLine(
	ctx context.Context,
	line *Line,
	price decimal.NullDecimal,
) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, size_id, quantity, price)
		SELECT $1, ps.product_id, ps.id, $4, COALESCE($5::numeric, p.price)
		FROM product_sizes ps
		JOIN products p ON p.id = ps.product_id
		WHERE ps.id = $3 AND ps.product_id = $2
		ON CONFLICT (cart_id, product_id, size_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity, price`

	err := r.db.QueryRowxContext(ctx, query,
		line.CartID,
		line.ProductID,
		line.SizeID,
		line.Quantity,
		price,
	).Scan(&line.ID, &line.Quantity, &line.Price)
	if err != nil {
		return fmt.Errorf("add cart line: %w", core.MapPgError(err))
	}

	return nil
}

func (r *repository) UpdateLine(
	ctx context.Context,
	userID, lineID int64,
	quantity int,
) error {
	query := `
		UPDATE cart_items ci
		SET quantity = $3
		FROM carts c
		WHERE ci.id = $2 AND c.id = ci.cart_id AND c.user_id = $1`

	return r.execOne(ctx, "update cart line", query, userID, lineID, quantity)
}

func (r *repository) RemoveLine(ctx context.Context, userID, lineID int64) error {
	query := `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.id = $2 AND c.id = ci.cart_id AND c.user_id = $1`

	return r.execOne(ctx, "remove cart line", query, userID, lineID)
}

func (r *repository) Clear(ctx context.Context, userID int64) error {
	query := `
		DELETE FROM cart_items ci
		USING carts c
		WHERE c.id = ci.cart_id AND c.user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("clear cart: %w", core.MapPgError(err))
	}

	return nil
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, core.MapPgError(err))
	}

	rows, err := core.RowsAffected(result)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
