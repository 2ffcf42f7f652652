package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/rogerio-castellano/store-dashboard/internal/ui"
)

// SaveProductHandler creates or updates a product from the modal form.
// On failure the stock tab is rendered again with the modal open.
func SaveProductHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := &ui.ProductForm{
		Name:          r.PostForm.Get("name"),
		PurchasePrice: r.PostForm.Get("purchase_price"),
		SalePrice:     r.PostForm.Get("sale_price"),
		Quantity:      r.PostForm.Get("quantity"),
	}
	if raw := r.PostForm.Get("id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			http.Error(w, "invalid product id", http.StatusBadRequest)
			return
		}
		form.ID = id
	}

	err := SessionFrom(r).Views.SaveProduct(r.Context(), form)
	switch {
	case err == nil:
		redirect(w, r, "/tabs/stock")
	case errors.Is(err, backend.ErrSessionExpired):
		redirectToLogin(w, r)
	default:
		showTab(w, r, ui.TabStock, ui.Request{Form: form}, statusFor(err))
	}
}

// ConfirmDeleteHandler shows the delete confirmation for a product.
func ConfirmDeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	showTab(w, r, ui.TabStock, ui.Request{Query: url.Values{"delete": {id}}}, http.StatusOK)
}

// DeleteProductHandler deletes a product once the confirmation form was submitted.
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	confirmed := r.PostForm.Get("confirm") == "yes"

	err = SessionFrom(r).Views.DeleteProduct(r.Context(), id, confirmed)
	switch {
	case err == nil:
		redirect(w, r, "/tabs/stock")
	case errors.Is(err, ui.ErrNotConfirmed):
		redirect(w, r, "/stock/products/"+strconv.Itoa(id)+"/delete")
	case errors.Is(err, backend.ErrSessionExpired):
		redirectToLogin(w, r)
	default:
		showTab(w, r, ui.TabStock, ui.Request{Error: msg.Error(err)}, statusFor(err))
	}
}
