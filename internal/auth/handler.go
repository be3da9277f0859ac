// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

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

// RegisterRoutes mounts the public identity endpoints. authLimiter guards
// every route; resendLimiter additionally throttles code re-delivery.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authLimiter, resendLimiter func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Use(authLimiter)

		r.Post("/register", h.Register)
		r.Post("/verify", h.Verify)
		r.Post("/login", h.Login)
		r.With(resendLimiter).Post("/resend", h.Resend)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, RegisterResponse{
		User:    toUserResponse(user),
		Message: "verification code sent to " + user.Email,
	})
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Verify(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.Resend(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, map[string]string{"message": "verification code sent"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
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

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmailDomain):
		core.BadRequest(w, "email domain is not allowed")
	case errors.Is(err, ErrEmailExists):
		core.JSONError(w, core.DuplicateError("email"))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, ErrAlreadyVerified):
		core.JSONError(w, core.NewAppError(
			err,
			"account is already verified",
			http.StatusBadRequest,
			"ALREADY_VERIFIED",
		))
	case errors.Is(err, ErrInvalidCode):
		core.JSONError(w, core.NewAppError(
			err,
			"invalid or expired verification code",
			http.StatusBadRequest,
			"INVALID_CODE",
		))
	case errors.Is(err, ErrInvalidCredentials):
		core.Unauthorized(w, "invalid email or password")
	case errors.Is(err, ErrNotVerified):
		core.JSONError(w, core.NewAppError(
			err,
			"email address has not been verified",
			http.StatusForbidden,
			"NOT_VERIFIED",
		))
	default:
		core.InternalServerError(w, err)
	}
}
