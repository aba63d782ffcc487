// AngelaMos | 2026
// handler.go

package directory

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

// Directory reads are public; sending an enquiry needs a session.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/directory", func(r chi.Router) {
		r.Get("/categories", h.ListCategories)
		r.Get("/businesses", h.ListBusinesses)
		r.Get("/businesses/{businessID}", h.GetBusiness)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/businesses/{businessID}/enquiries", h.SendEnquiry)
		})
	})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, CategoriesResponse{Categories: categories})
}

func (h *Handler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	categorySlug := r.URL.Query().Get("category")
	search := r.URL.Query().Get("search")

	businesses, err := h.service.ListBusinesses(r.Context(), categorySlug, search)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, BusinessesResponse{Businesses: businesses})
}

func (h *Handler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")

	business, err := h.service.GetBusiness(r.Context(), businessID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "business")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, business)
}

func (h *Handler) SendEnquiry(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	businessID := chi.URLParam(r, "businessID")

	var req EnquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.SendEnquiry(r.Context(), userID, businessID, req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownEnquiry):
			core.BadRequest(w, "unknown enquiry kind")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "business")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, resp)
}
