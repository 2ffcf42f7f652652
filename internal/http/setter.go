package http

import (
	rl "github.com/rogerio-castellano/store-dashboard/internal/http/rate_limiter"
	"github.com/rogerio-castellano/store-dashboard/internal/session"
)

var (
	sessions     *session.Manager
	loginLimiter *rl.Limiter
	cookieName   = "dashboard_session"
	cookieSecure bool
)

func SetSessionManager(m *session.Manager) {
	sessions = m
}

func SetLoginLimiter(l *rl.Limiter) {
	loginLimiter = l
}

// SetCookie configures the session cookie. An empty name keeps the default.
func SetCookie(name string, secure bool) {
	if name != "" {
		cookieName = name
	}
	cookieSecure = secure
}
