package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"

	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/rogerio-castellano/store-dashboard/internal/ui"
)

// redirectToLogin sends the browser to the login screen with the session expired notice.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login?expired=1", http.StatusSeeOther)
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// statusFor maps an action error to the status of the page rendered in its place.
func statusFor(err error) int {
	var ve *backend.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ui.ErrInvalidForm):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ve):
		if ve.Status >= 400 && ve.Status < 500 {
			return ve.Status
		}
		return http.StatusBadGateway
	case backend.IsNetwork(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writePage renders page with status. Rendering happens before the header is sent.
func writePage(w http.ResponseWriter, page ui.Page, status int) {
	var buf bytes.Buffer
	if err := renderer.Page(&buf, page); err != nil {
		log.Printf("render failed: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeLogin(w http.ResponseWriter, view ui.LoginView, status int) {
	var buf bytes.Buffer
	if err := renderer.Login(&buf, view); err != nil {
		log.Printf("render failed: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
