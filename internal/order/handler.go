// AngelaMos | 2026
// handler.go

package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/storefront-api/internal/core"
	"github.com/carterperez-dev/storefront-api/internal/middleware"
)

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

// RegisterRoutes mounts checkout and order history. checkoutLimiter wraps
// only order placement.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, checkoutLimiter func(http.Handler) http.Handler,
) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticator)

		r.With(checkoutLimiter).Post("/", h.Checkout)
		r.Get("/my", h.MyOrders)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/orders", func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/", h.ListOrders)
		r.Get("/{orderID}", h.GetOrder)
		r.Put("/{orderID}", h.UpdateStatus)
	})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if len(req.Items) == 0 {
		core.BadRequest(w, "cart is empty")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	order, err := h.service.Checkout(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToOrderResponse(order))
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.MyOrders(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToOrderResponseList(orders))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	params := ListOrdersParams{
		PageParams: core.ParsePageParams(r),
		Status:     r.URL.Query().Get("status"),
	}

	orders, total, err := h.service.ListOrders(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToOrderResponseList(orders),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := core.ParseID(chi.URLParam(r, "orderID"))
	if !ok {
		core.BadRequest(w, "invalid order id")
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToOrderResponse(order))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := core.ParseID(chi.URLParam(r, "orderID"))
	if !ok {
		core.BadRequest(w, "invalid order id")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToOrderResponse(order))
}

func writeError(w http.ResponseWriter, err error) {
	var stockErr *StockError

	switch {
	case errors.As(err, &stockErr):
		core.JSONError(w, core.ConflictError("INSUFFICIENT_STOCK", stockErr.Error()))
	case errors.Is(err, ErrUnknownSize):
		core.NotFound(w, "product size")
	case errors.Is(err, ErrEmptyOrder):
		core.BadRequest(w, "cart is empty")
	case errors.Is(err, ErrInvalidLine):
		core.BadRequest(w, "items must have a positive quantity and a non-negative price")
	case errors.Is(err, ErrTotalMismatch):
		core.BadRequest(w, "total does not match items")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "order")
	default:
		core.InternalServerError(w, err)
	}
}
