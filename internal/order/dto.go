// AngelaMos | 2026
// dto.go

package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

type LineRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	SizeID    int64           `json:"size_id"    validate:"required,gt=0"`
	Quantity  int             `json:"quantity"   validate:"required,gte=1,lte=1000"`
	Price     decimal.Decimal `json:"price"`
}

type CheckoutRequest struct {
	Items []LineRequest   `json:"items" validate:"required,min=1,max=100,dive"`
	Total decimal.Decimal `json:"total"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending preparing completed delivered cancelled"`
}

type ListOrdersParams struct {
	core.PageParams
	Status string
}

type ItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   *int64          `json:"product_id"`
	SizeID      *int64          `json:"size_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type OrderResponse struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Username  string          `json:"username,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	Items     []ItemResponse  `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func ToOrderResponse(o *Order) OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			SizeID:      it.SizeID,
			ProductName: it.ProductName,
			Size:        it.Size,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}

	return OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Username:  o.Username,
		Total:     o.Total,
		Status:    o.Status,
		Items:     items,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func ToOrderResponseList(orders []Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return out
}
