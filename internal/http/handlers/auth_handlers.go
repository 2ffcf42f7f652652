package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/rogerio-castellano/store-dashboard/internal/ui"
)

// LoginPageHandler shows the login form, or the dashboard when already logged in.
func LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	s := SessionFrom(r)
	if s.Controller.Authenticated() {
		redirect(w, r, "/tabs/"+string(ui.TabDashboard))
		return
	}

	view := ui.LoginView{Notice: s.Shell.Page().Notice}
	if view.Notice == "" && r.URL.Query().Get("expired") != "" {
		view.Notice = msg.T(ui.MsgSessionExpired)
	}
	writeLogin(w, view, http.StatusOK)
}

// LoginHandler exchanges the submitted credentials for a backend token.
// Failures are shown inline under the form.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	s := SessionFrom(r)
	err := s.Controller.Login(r.Context(), username, password)
	if err == nil {
		redirect(w, r, "/tabs/"+string(ui.TabDashboard))
		return
	}

	status := http.StatusBadGateway
	if errors.Is(err, backend.ErrInvalidCredentials) {
		status = http.StatusUnauthorized
	}
	writeLogin(w, ui.LoginView{Username: username, Error: msg.Error(err)}, status)
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	SessionFrom(r).Controller.Logout(r.Context())
	redirect(w, r, "/login")
}

// TooManyAttempts answers a rate-limited login.
func TooManyAttempts(w http.ResponseWriter, r *http.Request) {
	writeLogin(w, ui.LoginView{Error: msg.T(ui.MsgTooManyAttempts)}, http.StatusTooManyRequests)
}
