// AngelaMos | 2026
// handler.go

package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/localmart/internal/core"
	"github.com/angelamos/localmart/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/booking", func(r chi.Router) {
		r.Use(authenticator)
		r.Post("/sessions", h.StartSession)
		r.Post("/sessions/{sessionID}/service", h.SelectService)
		r.Get("/sessions/{sessionID}/slots", h.Slots)
		r.Post("/sessions/{sessionID}/confirm", h.Confirm)
	})
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.StartSession(r.Context(), userID, req.BusinessID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "business")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) SelectService(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req SelectServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.service.SelectService(r.Context(), userID, sessionID, req.ServiceID)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	core.OK(w, session)
}

func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		core.BadRequest(w, "date is required")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")

	resp, err := h.service.Slots(r.Context(), userID, sessionID, date)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sessionID := chi.URLParam(r, "sessionID")

	resp, err := h.service.Confirm(r.Context(), userID, sessionID, req)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionExpired):
		core.JSONError(w, core.NewAppError(
			err,
			"booking session expired, start again",
			http.StatusGone,
			"SESSION_EXPIRED",
		))
	case errors.Is(err, ErrStepLocked):
		core.JSONError(w, core.NewAppError(
			err,
			"complete the previous step first",
			http.StatusConflict,
			"STEP_LOCKED",
		))
	case errors.Is(err, ErrSelectionMismatch):
		core.BadRequest(w, "selection does not match session state")
	case errors.Is(err, ErrUnknownService):
		core.BadRequest(w, "unknown service")
	case errors.Is(err, ErrInvalidDate):
		core.BadRequest(w, "date must be within the next 30 days")
	case errors.Is(err, ErrSlotUnavailable):
		core.JSONError(w, core.NewAppError(
			err,
			"slot not available",
			http.StatusConflict,
			"SLOT_UNAVAILABLE",
		))
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "not your booking session")
	default:
		core.InternalServerError(w, err)
	}
}
