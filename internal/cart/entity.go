// AngelaMos | 2026
// entity.go

package cart

import (
	"github.com/shopspring/decimal"
)

// Line is one product and size in a user's cart. Price is the unit price
// captured when the line was first added.
type Line struct {
	ID          int64           `db:"id"`
	CartID      int64           `db:"cart_id"`
	ProductID   int64           `db:"product_id"`
	SizeID      int64           `db:"size_id"`
	Quantity    int             `db:"quantity"`
	Price       decimal.Decimal `db:"price"`
	ProductName string          `db:"product_name"`
	Size        string          `db:"size"`
}
