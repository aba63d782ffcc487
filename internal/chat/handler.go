// AngelaMos | 2026
// handler.go

package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

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
	r.Route("/chat", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/conversations", h.ListConversations)
		r.Post("/conversations", h.StartConversation)
		r.Get("/conversations/{conversationID}/messages", h.GetMessages)
		r.Post("/conversations/{conversationID}/messages", h.SendMessage)
		r.Post("/conversations/{conversationID}/read", h.MarkRead)
	})
}

func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	conversations, err := h.service.ListConversations(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ConversationsResponse{Conversations: conversations})
}

func (h *Handler) StartConversation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req StartConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	activeRole := middleware.GetActiveRole(r.Context())

	conv, err := h.service.StartConversation(
		r.Context(),
		userID,
		activeRole,
		req.OtherUserID,
	)
	if err != nil {
		if errors.Is(err, ErrSelfChat) {
			core.BadRequest(w, "cannot start a conversation with yourself")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, conv)
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	conversationID := chi.URLParam(r, "conversationID")

	var before *time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			core.BadRequest(w, "before must be an RFC 3339 timestamp")
			return
		}
		before = &t
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			core.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	messages, err := h.service.GetMessages(
		r.Context(),
		userID,
		conversationID,
		before,
		limit,
	)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	out := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}

	core.OK(w, MessagesResponse{Messages: out})
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	conversationID := chi.URLParam(r, "conversationID")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	msg, err := h.service.SendMessage(
		r.Context(),
		userID,
		conversationID,
		req.Content,
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyMessage):
			core.BadRequest(w, "message content is empty")
		case errors.Is(err, ErrMessageTooLong):
			core.BadRequest(w, "message content too long")
		default:
			h.writeChatError(w, err)
		}
		return
	}

	resp := toMessageResponse(msg)
	core.Created(w, resp)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	conversationID := chi.URLParam(r, "conversationID")

	updated, err := h.service.MarkRead(r.Context(), userID, conversationID)
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	core.OK(w, ReadResponse{Updated: updated})
}

func (h *Handler) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "conversation")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "not a participant in this conversation")
	default:
		core.InternalServerError(w, err)
	}
}
