// AngelaMos | 2026
// handler.go

package feed

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/localmart/internal/core"
	"github.com/angelamos/localmart/internal/middleware"
	"github.com/angelamos/localmart/internal/profile"
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

// Feed reads are public (with optional viewer annotations); writes need
// a session, and posting needs the business mode.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/feed", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/posts", h.ListPosts)
			r.Get("/posts/{postID}/comments", h.ListComments)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/posts/{postID}/comments", h.AddComment)
			r.Post("/posts/{postID}/like", h.ToggleLike)
			r.Post("/posts/{postID}/save", h.ToggleSave)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireActiveRole(profile.RoleBusiness))
				r.Post("/posts", h.CreatePost)
			})
		})
	})
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != "" && kind != KindPhoto && kind != KindReel {
		core.BadRequest(w, "kind must be photo or reel")
		return
	}

	viewerID := middleware.GetUserID(r.Context())

	posts, err := h.service.ListPosts(r.Context(), viewerID, kind)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, PostsResponse{Posts: posts})
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	post, err := h.service.CreatePost(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "business")
		case errors.Is(err, ErrNotOwner):
			core.Forbidden(w, "only the business owner can post")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, post)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	comments, err := h.service.ListComments(r.Context(), postID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "post")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, CommentsResponse{Comments: comments})
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	postID := chi.URLParam(r, "postID")

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	comment, err := h.service.AddComment(r.Context(), userID, postID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyComment):
			core.BadRequest(w, "comment content is empty")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "post")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	resp := toCommentResponse(comment)
	core.Created(w, resp)
}

func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	postID := chi.URLParam(r, "postID")

	resp, err := h.service.ToggleLike(r.Context(), userID, postID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "post")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	postID := chi.URLParam(r, "postID")

	resp, err := h.service.ToggleSave(r.Context(), userID, postID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "post")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}
