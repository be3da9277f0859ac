// AngelaMos | 2026
// handler.go

package user

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

// RegisterRoutes mounts /users. Listing and deletion are admin only; reads
// and updates allow the account owner or an admin.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.With(adminOnly).Get("/", h.ListUsers)
		r.Get("/me", h.GetMe)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}", h.UpdateUser)
		r.With(adminOnly).Delete("/{userID}", h.DeleteUser)
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		PageParams: core.ParsePageParams(r),
		Search:     r.URL.Query().Get("search"),
		Role:       r.URL.Query().Get("role"),
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	user, err := h.service.GetUser(r.Context(), actor, actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := core.ParseID(chi.URLParam(r, "userID"))
	if !ok {
		core.BadRequest(w, "invalid user id")
		return
	}

	user, err := h.service.GetUser(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := core.ParseID(chi.URLParam(r, "userID"))
	if !ok {
		core.BadRequest(w, "invalid user id")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateUser(r.Context(), actorFrom(r), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := core.ParseID(chi.URLParam(r, "userID"))
	if !ok {
		core.BadRequest(w, "invalid user id")
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func actorFrom(r *http.Request) Actor {
	return Actor{
		ID:      middleware.GetUserID(r.Context()),
		IsAdmin: middleware.IsAdmin(r.Context()),
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("email"))
	case errors.Is(err, ErrNotOwner):
		core.Forbidden(w, "")
	case errors.Is(err, ErrRoleChangeForbidden):
		core.Forbidden(w, "only admins can change roles")
	case errors.Is(err, ErrAdminUndeletable):
		core.Forbidden(w, "admin accounts cannot be deleted")
	default:
		core.InternalServerError(w, err)
	}
}
