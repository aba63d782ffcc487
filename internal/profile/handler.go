// AngelaMos | 2026
// handler.go

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/localmart/internal/core"
	"github.com/angelamos/localmart/internal/middleware"
)

// TokenIssuer mints a fresh access token after a role switch so the
// client's next request already carries the new active role.
type TokenIssuer interface {
	IssueAccessToken(ctx context.Context, userID string) (string, time.Time, error)
}

type Handler struct {
	service   *Service
	tokens    TokenIssuer
	validator *validator.Validate
}

func NewHandler(service *Service, tokens TokenIssuer) *Handler {
	return &Handler{
		service:   service,
		tokens:    tokens,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/profile", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.GetProfile)
		r.Patch("/", h.UpdateProfile)
		r.Get("/session", h.GetSession)
		r.Post("/session/role", h.SwitchRole)
		r.Post("/roles/business", h.AddBusinessRole)
	})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	session, err := h.service.GetSession(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, session)
}

func (h *Handler) SwitchRole(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req SwitchRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	session, err := h.service.SwitchRole(r.Context(), userID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrRoleNotGranted):
			core.Forbidden(w, "role not granted to this account")
		case errors.Is(err, ErrInvalidRole):
			core.BadRequest(w, "unknown role")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	token, expiresAt, err := h.tokens.IssueAccessToken(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SwitchRoleResponse{
		Session:     *session,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	})
}

func (h *Handler) AddBusinessRole(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	session, err := h.service.AddBusinessRole(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrAlreadyGranted) {
			core.JSONError(w, core.NewAppError(
				ErrAlreadyGranted,
				"business role already granted",
				http.StatusConflict,
				"ALREADY_GRANTED",
			))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, session)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	p, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "profile")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, p)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "profile")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, p)
}
