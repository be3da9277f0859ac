// AngelaMos | 2026
// entity.go

package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type Product struct {
	ID           int64           `db:"id"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	Price        decimal.Decimal `db:"price"`
	CategoryID   *int64          `db:"category_id"`
	CategoryName *string         `db:"category_name"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`

	Sizes []Size `db:"-"`
}

// Size is a purchasable variant of a product with its own stock count.
type Size struct {
	ID        int64  `db:"id"`
	ProductID int64  `db:"product_id"`
	Label     string `db:"size"`
	Stock     int    `db:"stock"`
}
