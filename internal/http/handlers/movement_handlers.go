package handlers

import (
	"errors"
	"net/http"

	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/rogerio-castellano/store-dashboard/internal/ui"
)

func RecordSaleHandler(w http.ResponseWriter, r *http.Request) {
	recordMovement(w, r, ui.TabSales)
}

func RecordLossHandler(w http.ResponseWriter, r *http.Request) {
	recordMovement(w, r, ui.TabLosses)
}

// recordMovement submits the entry form; success reloads the tab so stock and history are re-fetched.
func recordMovement(w http.ResponseWriter, r *http.Request, kind ui.Tab) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := &ui.MovementForm{
		ProductID: r.PostForm.Get("product_id"),
		Quantity:  r.PostForm.Get("quantity"),
	}

	err := SessionFrom(r).Views.RecordMovement(r.Context(), kind, form)
	switch {
	case err == nil:
		redirect(w, r, "/tabs/"+string(kind))
	case errors.Is(err, backend.ErrSessionExpired):
		redirectToLogin(w, r)
	default:
		showTab(w, r, kind, ui.Request{Form: form}, statusFor(err))
	}
}
