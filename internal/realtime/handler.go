// AngelaMos | 2026
// handler.go

package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/angelamos/localmart/internal/config"
	"github.com/angelamos/localmart/internal/core"
	"github.com/angelamos/localmart/internal/middleware"
)

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"

	maxFrameBytes = 1024
)

type clientFrame struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// SubscriptionAuthorizer decides whether a user may attach to a topic.
// Conversation topics are participant-only; the chat service owns that
// answer.
type SubscriptionAuthorizer interface {
	CanSubscribe(ctx context.Context, userID, topic string) bool
}

type Handler struct {
	hub        *Hub
	verifier   middleware.TokenVerifier
	authorizer SubscriptionAuthorizer
	upgrader   websocket.Upgrader
	logger     *slog.Logger
	cfg        config.ChatConfig
}

func NewHandler(
	hub *Hub,
	verifier middleware.TokenVerifier,
	authorizer SubscriptionAuthorizer,
	corsCfg config.CORSConfig,
	chatCfg config.ChatConfig,
	logger *slog.Logger,
) *Handler {
	allowed := make(map[string]struct{}, len(corsCfg.AllowedOrigins))
	for _, origin := range corsCfg.AllowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &Handler{
		hub:        hub,
		verifier:   verifier,
		authorizer: authorizer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := allowed["*"]; ok {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
		logger: logger,
		cfg:    chatCfg,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/realtime/ws", h.Serve)
}

// Serve authenticates the upgrade request and runs the read loop until
// the client goes away. Browsers cannot set headers on websocket
// dials, so the token may also come in the query string.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		core.Unauthorized(w, "missing authorization token")
		return
	}

	claims, err := h.verifier.VerifyAccessToken(r.Context(), token)
	if err != nil {
		core.Unauthorized(w, "invalid token")
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := NewConnection(
		claims.UserID,
		ws,
		h.cfg.SendBuffer,
		h.cfg.PingPeriod,
		h.cfg.WriteWait,
	)

	h.hub.Attach(conn)
	defer h.hub.Detach(conn)

	// A session always hears its own notifications.
	h.hub.Subscribe(UserTopic(claims.UserID), conn)

	h.readLoop(r.Context(), claims.UserID, conn, ws)
}

func (h *Handler) readLoop(
	ctx context.Context,
	userID string,
	conn *Connection,
	ws *websocket.Conn,
) {
	ws.SetReadLimit(maxFrameBytes)
	readWait := h.cfg.PingPeriod + h.cfg.WriteWait
	_ = ws.SetReadDeadline(time.Now().Add(readWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
			) {
				h.logger.Debug("websocket closed", "user_id", userID, "error", err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.sendError(conn, "", "malformed frame")
			continue
		}

		h.handleFrame(ctx, userID, conn, frame)
	}
}

func (h *Handler) handleFrame(
	ctx context.Context,
	userID string,
	conn *Connection,
	frame clientFrame,
) {
	topic := strings.TrimSpace(frame.Topic)
	if topic == "" {
		h.sendError(conn, topic, "topic required")
		return
	}

	switch frame.Action {
	case actionSubscribe:
		if !h.canSubscribe(ctx, userID, topic) {
			h.sendError(conn, topic, "subscription not allowed")
			return
		}
		h.hub.Subscribe(topic, conn)
	case actionUnsubscribe:
		h.hub.Unsubscribe(topic, conn)
	default:
		h.sendError(conn, topic, "unknown action")
	}
}

func (h *Handler) canSubscribe(
	ctx context.Context,
	userID, topic string,
) bool {
	switch {
	case strings.HasPrefix(topic, "user:"):
		return topic == UserTopic(userID)
	case strings.HasPrefix(topic, "conversation:"):
		return h.authorizer.CanSubscribe(ctx, userID, topic)
	case topic == TopicConversations:
		return true
	case strings.HasPrefix(topic, "post:"):
		return true
	default:
		return false
	}
}

func (h *Handler) sendError(conn *Connection, topic, message string) {
	event, err := NewEvent("error", topic, map[string]string{"message": message})
	if err != nil {
		return
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	//nolint:errcheck // a dead connection surfaces in the read loop
	_ = conn.Send(raw)
}
