// AngelaMos | 2026
// dto.go

package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

type ListProductsParams struct {
	core.PageParams
	Search     string
	CategoryID int64
}

type SizeRequest struct {
	Size  string `json:"size"  validate:"required,max=50"`
	Stock *int   `json:"stock" validate:"required,gte=0"`
}

type UpdateSizeRequest struct {
	Size  *string `json:"size,omitempty"  validate:"omitempty,min=1,max=50"`
	Stock *int    `json:"stock,omitempty" validate:"omitempty,gte=0"`
}

type CreateProductRequest struct {
	Name        string           `json:"name"                  validate:"required,max=200"`
	Description string           `json:"description"           validate:"max=5000"`
	Price       *decimal.Decimal `json:"price"                 validate:"required"`
	CategoryID  *int64           `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Sizes       []SizeRequest    `json:"sizes,omitempty"       validate:"omitempty,max=50,dive"`
}

// UpdateProductRequest is a partial update. ClearCategory detaches the
// product from its category.
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty"           validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description,omitempty"    validate:"omitempty,max=5000"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	CategoryID    *int64           `json:"category_id,omitempty"    validate:"omitempty,gt=0"`
	ClearCategory bool             `json:"clear_category,omitempty"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type SizeResponse struct {
	ID    int64  `json:"id"`
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

type ProductResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   *int64          `json:"category_id"`
	CategoryName *string         `json:"category_name"`
	Sizes        []SizeResponse  `json:"sizes"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type CategoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func ToSizeResponse(s Size) SizeResponse {
	return SizeResponse{ID: s.ID, Size: s.Label, Stock: s.Stock}
}

func ToSizeResponseList(sizes []Size) []SizeResponse {
	out := make([]SizeResponse, 0, len(sizes))
	for _, s := range sizes {
		out = append(out, ToSizeResponse(s))
	}
	return out
}

func ToProductResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Sizes:        ToSizeResponseList(p.Sizes),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func ToProductResponseList(products []Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToProductResponse(&products[i]))
	}
	return out
}

func ToCategoryResponseList(categories []Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryResponse(c))
	}
	return out
}
