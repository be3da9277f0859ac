// AngelaMos | 2026
// handler.go

package cart

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetCart)
		r.Post("/", h.AddLine)
		r.Delete("/", h.Clear)
		r.Put("/{itemID}", h.UpdateLine)
		r.Delete("/{itemID}", h.RemoveLine)
	})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.GetCart(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCartResponse(lines))
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineRequest
	if !h.decode(w, r, &req) {
		return
	}

	line, err := h.service.AddLine(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToLineResponse(*line))
}

func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	lineID, ok := core.ParseID(chi.URLParam(r, "itemID"))
	if !ok {
		core.BadRequest(w, "invalid cart item id")
		return
	}

	var req UpdateLineRequest
	if !h.decode(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.UpdateLine(r.Context(), userID, lineID, req.Quantity); err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, map[string]any{"id": lineID, "quantity": req.Quantity})
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	lineID, ok := core.ParseID(chi.URLParam(r, "itemID"))
	if !ok {
		core.BadRequest(w, "invalid cart item id")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.RemoveLine(r.Context(), userID, lineID); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
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

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNegativePrice):
		core.BadRequest(w, "price must not be negative")
	case errors.Is(err, ErrUnknownSize):
		core.NotFound(w, "product size")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "cart item")
	default:
		core.InternalServerError(w, err)
	}
}
