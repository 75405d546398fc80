package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/Isaac-1-lang/Ecommerce/internal/events"
	"github.com/Isaac-1-lang/Ecommerce/internal/service"
)

// SessionEventsHandler streams the life of the caller's session over SSE
// or a websocket. Browsers cannot set headers on EventSource or WebSocket,
// so the token may also be passed as ?token=.
type SessionEventsHandler struct {
	sessions *service.SessionService
	hub      *events.Hub
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type SessionEventsHandlerConfig struct {
	Sessions     *service.SessionService
	Hub          *events.Hub
	TickInterval time.Duration
	Now          func() time.Time
	Logger       *slog.Logger
}

func NewSessionEventsHandler(cfg SessionEventsHandlerConfig) *SessionEventsHandler {
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = events.DefaultTickInterval
	}
	return &SessionEventsHandler{
		sessions: cfg.Sessions,
		hub:      cfg.Hub,
		interval: interval,
		now:      cfg.Now,
		logger:   cfg.Logger,
	}
}

func (h *SessionEventsHandler) Register(router fiber.Router) {
	session := router.Group("/auth/session")
	session.Get("/events", h.Stream)
	session.Get("/ws", h.requireSocketSession, websocket.New(h.socket, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))
}

// Stream godoc
//
//	@Summary		Session event stream
//	@Description	Server-sent events: tick every second, refreshed, and a final expired, revoked or replaced
//	@Tags			auth
//	@Produce		text/event-stream
//	@Param			token	query		string	false	"Session token when no Authorization header can be sent"
//	@Success		200		{object}	docs.SessionEvent
//	@Failure		401		{object}	docs.ErrorInfo
//	@Router			/auth/session/events [get]
func (h *SessionEventsHandler) Stream(c *fiber.Ctx) error {
	principal, err := h.authenticate(c)
	if err != nil {
		return HandleDomainError(c, h.logger, err)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	ctx, cancel := context.WithCancel(context.Background())
	stream := events.Follow(ctx, h.hub, h.followOptions(principal))

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for event := range stream {
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}

			fmt.Fprintf(w, "event: %s\n", event.Type)
			fmt.Fprintf(w, "data: %s\n\n", data)

			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}

func (h *SessionEventsHandler) requireSocketSession(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	principal, err := h.authenticate(c)
	if err != nil {
		return HandleDomainError(c, h.logger, err)
	}
	c.Locals(principalContextKey, principal)

	return c.Next()
}

func (h *SessionEventsHandler) socket(conn *websocket.Conn) {
	principal, ok := conn.Locals(principalContextKey).(*service.Principal)
	if !ok || principal == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var last events.SessionEvent
	for event := range events.Follow(ctx, h.hub, h.followOptions(principal)) {
		last = event
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}

	if last.Terminal() {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(last.Type)))
	}
}

func (h *SessionEventsHandler) authenticate(c *fiber.Ctx) (*service.Principal, error) {
	token := c.Query("token")
	if token == "" {
		token = BearerToken(c)
	}
	return h.sessions.Authenticate(c.UserContext(), token)
}

func (h *SessionEventsHandler) followOptions(principal *service.Principal) events.FollowOptions {
	return events.FollowOptions{
		UserID:    principal.Session.UserID,
		SessionID: principal.Session.ID,
		ExpiresAt: principal.Session.ExpiresAt,
		Interval:  h.interval,
		Now:       h.now,
	}
}
