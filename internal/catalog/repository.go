// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

type Repository interface {
	ListProducts(ctx context.Context, params ListProductsParams) ([]Product, int, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	SizesByProduct(ctx context.Context, productIDs []int64) (map[int64][]Size, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id int64) error

	CreateSize(ctx context.Context, size *Size) error
	UpdateSize(ctx context.Context, id int64, label *string, stock *int) (*Size, error)
	DeleteSize(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.category_id,
	       c.name AS category_name, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

func (r *repository) ListProducts(
	ctx context.Context,
	params ListProductsParams,
) ([]Product, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(p.name ILIKE $%d OR p.description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if params.CategoryID > 0 {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argIdx))
		args = append(args, params.CategoryID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM products p WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY p.id
		LIMIT $%d OFFSET $%d`,
		productSelect, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	products := []Product{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

func (r *repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := r.db.GetContext(ctx, &product, productSelect+` WHERE p.id = $1`, id); err != nil {
		return nil, fmt.Errorf("get product: %w", core.MapPgError(err))
	}

	return &product, nil
}

// SizesByProduct loads the sizes of every listed product in one query.
func (r *repository) SizesByProduct(
	ctx context.Context,
	productIDs []int64,
) (map[int64][]Size, error) {
	out := make(map[int64][]Size, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, product_id, size, stock
		FROM product_sizes
		WHERE product_id IN (?)
		ORDER BY product_id, id`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("build sizes query: %w", err)
	}

	var sizes []Size
	if err := r.db.SelectContext(ctx, &sizes, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list sizes: %w", err)
	}

	for _, s := range sizes {
		out[s.ProductID] = append(out[s.ProductID], s)
	}

	return out, nil
}

// CreateProduct inserts the product and its initial sizes atomically.
func (r *repository) CreateProduct(ctx context.Context, product *Product) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO products (name, description, price, category_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at`

		err := tx.QueryRowxContext(ctx, query,
			product.Name,
			product.Description,
			product.Price,
			product.CategoryID,
		).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create product: %w", core.MapPgError(err))
		}

		for i := range product.Sizes {
			product.Sizes[i].ProductID = product.ID
			if err := insertSize(ctx, tx, &product.Sizes[i]); err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *repository) UpdateProduct(ctx context.Context, product *Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, category_id = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &product.UpdatedAt, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", core.MapPgError(err))
	}

	return nil
}

// DeleteProduct removes the sizes first and then the product, in one
// transaction.
func (r *repository) DeleteProduct(ctx context.Context, id int64) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM product_sizes WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("delete product sizes: %w", core.MapPgError(err))
		}

		return execOne(ctx, tx, "delete product", `DELETE FROM products WHERE id = $1`, id)
	})
}

func (r *repository) CreateSize(ctx context.Context, size *Size) error {
	return insertSize(ctx, r.db, size)
}

// UpdateSize sets only the supplied columns in a single statement. A nil
// stock leaves the row's current count alone, so concurrent checkout
// decrements are never overwritten.
func (r *repository) UpdateSize(
	ctx context.Context,
	id int64,
	label *string,
	stock *int,
) (*Size, error) {
	query := `
		UPDATE product_sizes
		SET size = COALESCE($2::varchar, size),
		    stock = COALESCE($3::integer, stock)
		WHERE id = $1
		RETURNING id, product_id, size, stock`

	var size Size
	if err := r.db.GetContext(ctx, &size, query, id, label, stock); err != nil {
		return nil, fmt.Errorf("update size: %w", core.MapPgError(err))
	}

	return &size, nil
}

func (r *repository) DeleteSize(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, "delete size", `DELETE FROM product_sizes WHERE id = $1`, id)
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	categories := []Category{}
	query := `SELECT id, name, created_at FROM categories ORDER BY name`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *Category) error {
	query := `INSERT INTO categories (name) VALUES ($1) RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, category.Name).
		Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", core.MapPgError(err))
	}

	return nil
}

func (r *repository) UpdateCategory(ctx context.Context, category *Category) error {
	query := `UPDATE categories SET name = $2 WHERE id = $1 RETURNING created_at`

	if err := r.db.GetContext(ctx, &category.CreatedAt, query, category.ID, category.Name); err != nil {
		return fmt.Errorf("update category: %w", core.MapPgError(err))
	}

	return nil
}

func (r *repository) DeleteCategory(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, "delete category", `DELETE FROM categories WHERE id = $1`, id)
}

func insertSize(ctx context.Context, db core.DBTX, size *Size) error {
	query := `
		INSERT INTO product_sizes (product_id, size, stock)
		VALUES ($1, $2, $3)
		RETURNING id`

	if err := db.QueryRowxContext(ctx, query, size.ProductID, size.Label, size.Stock).
		Scan(&size.ID); err != nil {
		return fmt.Errorf("create size: %w", core.MapPgError(err))
	}

	return nil
}

func execOne(ctx context.Context, db core.DBTX, op, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
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
