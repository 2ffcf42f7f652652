// Package backendtest runs an in-process stand-in for the inventory REST backend.
// State lives in memory; stock, prices and metrics are computed server-side.
package backendtest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/store-dashboard/internal/auth"
	"github.com/rogerio-castellano/store-dashboard/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	Username = "admin"
	Password = "admin123"

	// LowStockThreshold lists products below this quantity as low stock.
	LowStockThreshold = 5
	topSalesLimit     = 5
)

// Request is one recorded call.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
}

type failure struct {
	status int
	detail string
}

// Server is the fake backend. Use New to start one.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	secret   []byte
	hash     []byte
	tokenTTL time.Duration
	tokens   map[string]bool
	requests []Request
	failures map[string]failure
	delay    time.Duration
	now      func() time.Time

	products      []models.Product
	nextProductID int
	sales         []models.Sale
	nextSaleID    int
	losses        []models.Loss
	nextLossID    int
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	s := &Server{
		secret:        []byte("backendtest-secret"),
		hash:          hash,
		tokenTTL:      time.Hour,
		tokens:        make(map[string]bool),
		failures:      make(map[string]failure),
		now:           time.Now,
		nextProductID: 1,
		nextSaleID:    1,
		nextLossID:    1,
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Post("/token", s.tokenHandler)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)

		r.Get("/api/produits", s.listProducts)
		r.Post("/api/produits", s.createProduct)
		r.Put("/api/produits", s.updateProduct)
		r.Delete("/api/produits/{id}", s.deleteProduct)

		r.Get("/api/ventes", s.listSales)
		r.Post("/api/ventes", s.createSale)
		r.Get("/api/pertes", s.listLosses)
		r.Post("/api/pertes", s.createLoss)

		r.Get("/api/dashboard", s.dashboard)
		r.Get("/api/analyse", s.analysis)
		r.Get("/api/export", s.export)
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
		})
		delay := s.delay
		f, fail := s.failures[r.URL.Path]
		if fail {
			delete(s.failures, r.URL.Path)
		}
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if fail {
			writeDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		s.mu.Lock()
		known := s.tokens[token]
		s.mu.Unlock()

		if _, err := auth.ParseToken(token, s.secret); err != nil || !known {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid form")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	if username != Username || bcrypt.CompareHashAndPassword(s.hash, []byte(password)) != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Nom d'utilisateur ou mot de passe incorrect")
		return
	}

	s.mu.Lock()
	ttl := s.tokenTTL
	s.mu.Unlock()

	token, err := auth.GenerateToken(username, s.secret, ttl)
	if err != nil {
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	s.tokens[token] = true
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

// Requests returns a copy of every call received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many calls matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// RevokeTokens makes every token issued so far answer 401.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	s.tokens = make(map[string]bool)
	s.mu.Unlock()
}

// SetTokenTTL changes the lifetime of tokens issued from now on.
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.mu.Lock()
	s.tokenTTL = ttl
	s.mu.Unlock()
}

// FailNext makes the next call to path answer status with detail.
func (s *Server) FailNext(path string, status int, detail string) {
	s.mu.Lock()
	s.failures[path] = failure{status: status, detail: detail}
	s.mu.Unlock()
}

// SetDelay holds every response for d.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// SetClock replaces the time source used to stamp movements and compute metrics.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}
