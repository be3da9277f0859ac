// AngelaMos | 2026
// handler.go

package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts the public product reads.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{productID}", h.GetProduct)
	})
}

// RegisterAdminRoutes mounts catalog management. The caller supplies the
// authentication and admin guards.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Route("/admin/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)

			r.Put("/sizes/{sizeID}", h.UpdateSize)
			r.Delete("/sizes/{sizeID}", h.DeleteSize)

			r.Get("/{productID}", h.GetProduct)
			r.Put("/{productID}", h.UpdateProduct)
			r.Delete("/{productID}", h.DeleteProduct)
			r.Get("/{productID}/sizes", h.ListSizes)
			r.Post("/{productID}/sizes", h.AddSize)
		})

		r.Route("/admin/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
			r.Put("/{categoryID}", h.RenameCategory)
			r.Delete("/{categoryID}", h.DeleteCategory)
		})
	})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := ListProductsParams{
		PageParams: core.ParsePageParams(r),
		Search:     r.URL.Query().Get("search"),
	}

	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			core.BadRequest(w, "invalid category_id")
			return
		}
		params.CategoryID = id
	}

	products, total, err := h.service.ListProducts(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToProductResponseList(products),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID", "product")
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, err, "product")
		return
	}

	core.OK(w, ToProductResponse(product))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		writeError(w, err, "product")
		return
	}

	core.Created(w, ToProductResponse(product))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID", "product")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		writeError(w, err, "product")
		return
	}

	core.OK(w, ToProductResponse(product))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID", "product")
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, err, "product")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListSizes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID", "product")
	if !ok {
		return
	}

	sizes, err := h.service.ListSizes(r.Context(), id)
	if err != nil {
		writeError(w, err, "product")
		return
	}

	core.OK(w, ToSizeResponseList(sizes))
}

func (h *Handler) AddSize(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productID", "product")
	if !ok {
		return
	}

	var req SizeRequest
	if !h.decode(w, r, &req) {
		return
	}

	size, err := h.service.AddSize(r.Context(), id, req)
	if err != nil {
		writeError(w, err, "product")
		return
	}

	core.Created(w, ToSizeResponse(*size))
}

func (h *Handler) UpdateSize(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sizeID", "size")
	if !ok {
		return
	}

	var req UpdateSizeRequest
	if !h.decode(w, r, &req) {
		return
	}

	size, err := h.service.UpdateSize(r.Context(), id, req)
	if err != nil {
		writeError(w, err, "size")
		return
	}

	core.OK(w, ToSizeResponse(*size))
}

func (h *Handler) DeleteSize(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sizeID", "size")
	if !ok {
		return
	}

	if err := h.service.DeleteSize(r.Context(), id); err != nil {
		writeError(w, err, "size")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCategoryResponseList(categories))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, err, "category")
		return
	}

	core.Created(w, CategoryResponse(*category))
}

func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryID", "category")
	if !ok {
		return
	}

	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.service.RenameCategory(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, err, "category")
		return
	}

	core.OK(w, CategoryResponse(*category))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "categoryID", "category")
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, err, "category")
		return
	}

	core.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func pathID(w http.ResponseWriter, r *http.Request, param, resource string) (int64, bool) {
	id, ok := core.ParseID(chi.URLParam(r, param))
	if !ok {
		core.BadRequest(w, "invalid "+resource+" id")
	}
	return id, ok
}

func writeError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, ErrNegativePrice):
		core.BadRequest(w, "price must not be negative")
	case errors.Is(err, ErrUnknownCategory):
		core.BadRequest(w, "category does not exist")
	case errors.Is(err, ErrEmptyUpdate):
		core.BadRequest(w, "no fields to update")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError(resource))
	case errors.Is(err, core.ErrCheckViolation):
		core.BadRequest(w, "value out of range")
	default:
		core.InternalServerError(w, err)
	}
}
