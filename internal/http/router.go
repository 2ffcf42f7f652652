package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rogerio-castellano/store-dashboard/internal/http/handlers"
)

func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(LogMiddleware)

	r.Get("/healthz", handlers.HealthHandler)

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Get("/login", handlers.LoginPageHandler)
		r.With(LoginRateLimit).Post("/login", handlers.LoginHandler)
		r.Post("/logout", handlers.LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(RequireLogin)

			r.Get("/", handlers.IndexHandler)
			r.Get("/tabs/{tab}", handlers.TabHandler)
			r.Post("/stock/products", handlers.SaveProductHandler)
			r.Get("/stock/products/{id}/delete", handlers.ConfirmDeleteHandler)
			r.Post("/stock/products/{id}/delete", handlers.DeleteProductHandler)
			r.Post("/sales", handlers.RecordSaleHandler)
			r.Post("/losses", handlers.RecordLossHandler)
			r.Get("/export", handlers.ExportHandler)
		})
	})
	return r
}
