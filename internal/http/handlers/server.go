package handlers

import (
	"context"
	"net/http"

	"github.com/rogerio-castellano/store-dashboard/internal/session"
	"github.com/rogerio-castellano/store-dashboard/internal/ui"
)

var (
	renderer *ui.Renderer
	msg      *ui.Messages
)

func SetRenderer(r *ui.Renderer) {
	renderer = r
}

func SetMessages(m *ui.Messages) {
	msg = m
}

type contextKey string

const sessionKey = contextKey("session")

// WithSession attaches the browser's session to ctx.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the session attached by the session middleware, or nil.
func SessionFrom(r *http.Request) *session.Session {
	s, _ := r.Context().Value(sessionKey).(*session.Session)
	return s
}
