// AngelaMos | 2026
// dto.go

package cart

import (
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

// AddLineRequest adds quantity units of a size. Price is optional and
// defaults to the product's current price.
type AddLineRequest struct {
	ProductID int64            `json:"product_id"      validate:"required,gt=0"`
	SizeID    int64            `json:"size_id"         validate:"required,gt=0"`
	Quantity  int              `json:"quantity"        validate:"required,gte=1,lte=1000"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

type UpdateLineRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1,lte=1000"`
}

type LineResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	SizeID      int64           `json:"size_id"`
	Size        string          `json:"size"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Items []LineResponse  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func ToLineResponse(l Line) LineResponse {
	return LineResponse{
		ID:          l.ID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		SizeID:      l.SizeID,
		Size:        l.Size,
		Quantity:    l.Quantity,
		Price:       l.Price,
		Subtotal:    core.Subtotal(l.Price, l.Quantity),
	}
}

func ToCartResponse(lines []Line) CartResponse {
	resp := CartResponse{
		Items: make([]LineResponse, 0, len(lines)),
		Total: decimal.Zero,
	}
	for _, l := range lines {
		item := ToLineResponse(l)
		resp.Items = append(resp.Items, item)
		resp.Total = resp.Total.Add(item.Subtotal)
	}
	return resp
}
