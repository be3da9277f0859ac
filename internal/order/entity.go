// AngelaMos | 2026
// entity.go

package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusCompleted = "completed"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

type Order struct {
	ID        int64           `db:"id"`
	UserID    int64           `db:"user_id"`
	Username  string          `db:"username"`
	Total     decimal.Decimal `db:"total"`
	Status    string          `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`

	Items []Item `db:"-"`
}

// Item is an immutable purchased line. ProductName and Size are copied at
// checkout so later catalog edits never change order history.
type Item struct {
	ID          int64           `db:"id"`
	OrderID     int64           `db:"order_id"`
	ProductID   *int64          `db:"product_id"`
	SizeID      *int64          `db:"size_id"`
	ProductName string          `db:"product_name"`
	Size        string          `db:"size"`
	Quantity    int             `db:"quantity"`
	Price       decimal.Decimal `db:"price"`
}

// Snapshot is the catalog state captured when stock is taken.
type Snapshot struct {
	ProductName string `db:"product_name"`
	Size        string `db:"size"`
}
