// AngelaMos | 2026
// handler.go

package report

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/storefront-api/internal/core"
)

const systemCheckTimeout = 3 * time.Second

type Handler struct {
	service *Service
	system  SystemSources
}

func NewHandler(service *Service, system SystemSources) *Handler {
	return &Handler{
		service: service,
		system:  system,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/reports", func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/total-sales", h.TotalSales)
		r.Get("/total-users", h.TotalUsers)
		r.Get("/orders-summary", h.OrdersSummary)
		r.Get("/sales-per-day", h.SalesPerDay)
		r.Get("/monthly-sales", h.MonthlySales)
		r.Get("/top-products", h.TopProducts)
		r.Get("/system", h.System)
	})
}

func (h *Handler) TotalSales(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.TotalSales(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{"total_sales": total})
}

func (h *Handler) TotalUsers(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.TotalUsers(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{"total_users": count})
}

func (h *Handler) OrdersSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.OrdersSummary(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, rows)
}

func (h *Handler) SalesPerDay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		core.BadRequest(w, "start and end are required")
		return
	}

	rows, err := h.service.SalesPerDay(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, rows)
}

func (h *Handler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.MonthlySales(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, rows)
}

func (h *Handler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			core.BadRequest(w, ErrInvalidLimit.Error())
			return
		}
		limit = n
	}

	rows, err := h.service.TopProducts(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, rows)
}

func (h *Handler) System(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), systemCheckTimeout)
	defer cancel()

	core.OK(w, h.system.collect(ctx))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidDate):
		core.BadRequest(w, ErrInvalidDate.Error())
	case errors.Is(err, ErrInvalidRange):
		core.BadRequest(w, ErrInvalidRange.Error())
	case errors.Is(err, ErrInvalidLimit):
		core.BadRequest(w, ErrInvalidLimit.Error())
	default:
		core.InternalServerError(w, err)
	}
}
