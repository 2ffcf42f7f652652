package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/rogerio-castellano/store-dashboard/internal/ui"
)

// attachment streams a download to the browser under a fixed file name.
type attachment struct {
	w       http.ResponseWriter
	started bool
}

func (a *attachment) Save(filename, contentType string, body io.Reader) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	a.w.Header().Set("Content-Type", contentType)
	a.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	a.w.WriteHeader(http.StatusOK)
	a.started = true
	_, err := io.Copy(a.w, body)
	return err
}

var exportTabs = map[string]ui.Tab{
	"stock":  ui.TabStock,
	"sales":  ui.TabSales,
	"losses": ui.TabLosses,
}

// ExportHandler downloads export_<type>.<xlsx|pdf> with the session's credential.
func ExportHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("type")
	format := r.URL.Query().Get("format")

	out := &attachment{w: w}
	err := SessionFrom(r).Views.Export(r.Context(), dataType, format, out)
	switch {
	case err == nil:
	case out.started:
		log.Printf("export %s/%s interrupted: %v", dataType, format, err)
	case errors.Is(err, ui.ErrUnknownExport):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, backend.ErrSessionExpired):
		redirectToLogin(w, r)
	default:
		showTab(w, r, exportTabs[dataType], ui.Request{Error: msg.Error(err)}, statusFor(err))
	}
}
