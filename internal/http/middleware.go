package http

import (
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/rogerio-castellano/store-dashboard/internal/http/handlers"
	"github.com/rogerio-castellano/store-dashboard/internal/session"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func LogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// SessionMiddleware resolves the browser's session from its cookie, issuing a new id when
// the cookie is missing or malformed, and attaches the session to the request context.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(cookieName); err == nil {
			id = c.Value
		}

		s, err := sessions.Get(r.Context(), id)
		if errors.Is(err, session.ErrInvalidSessionID) {
			id = session.NewID()
			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   cookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
			s, err = sessions.Get(r.Context(), id)
		}
		if err != nil {
			log.Printf("session %s: %v", id, err)
		}
		if s == nil {
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithSession(r.Context(), s)))
	})
}

// RequireLogin sends sessions without a credential to the login screen.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !handlers.SessionFrom(r).Controller.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginRateLimit throttles login attempts per client IP.
func LoginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if loginLimiter != nil && !loginLimiter.Allow(clientIP(r)) {
			handlers.TooManyAttempts(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
