package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/rogerio-castellano/store-dashboard/internal/ui"
)

// IndexHandler opens the active tab.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, "/tabs/"+string(SessionFrom(r).Shell.Page().Active))
}

// TabHandler activates the tab named in the URL and renders its content.
func TabHandler(w http.ResponseWriter, r *http.Request) {
	tab, ok := ui.ParseTab(chi.URLParam(r, "tab"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	showTab(w, r, tab, ui.Request{Query: r.URL.Query()}, http.StatusOK)
}

// showTab selects tab and writes the resulting page.
func showTab(w http.ResponseWriter, r *http.Request, tab ui.Tab, req ui.Request, status int) {
	page, err := SessionFrom(r).Shell.SelectTab(r.Context(), tab, req)
	switch {
	case errors.Is(err, backend.ErrSessionExpired):
		redirectToLogin(w, r)
	case errors.Is(err, ui.ErrSuperseded):
		// A newer selection from the same session renders the page.
		w.WriteHeader(http.StatusNoContent)
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		writePage(w, page, status)
	}
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
