package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrUnknownExport = errors.New("unknown export type or format")

var exportExtensions = map[string]string{
	"excel": "xlsx",
	"pdf":   "pdf",
}

var exportTypes = map[string]bool{
	"stock":  true,
	"sales":  true,
	"losses": true,
}

// ExportFilename is export_<type>.<xlsx|pdf>.
func ExportFilename(dataType, format string) (string, error) {
	ext, ok := exportExtensions[format]
	if !ok || !exportTypes[dataType] {
		return "", fmt.Errorf("%w: %s/%s", ErrUnknownExport, dataType, format)
	}
	return fmt.Sprintf("export_%s.%s", dataType, ext), nil
}

// Saver hands a downloaded file to the user.
type Saver interface {
	Save(filename, contentType string, body io.Reader) error
}

// Export fetches one file with the session credential and saves it once.
func (v *Views) Export(ctx context.Context, dataType, format string, saver Saver) error {
	filename, err := ExportFilename(dataType, format)
	if err != nil {
		return err
	}

	dl, err := v.Exports.Export(ctx, dataType, format)
	if err != nil {
		return err
	}
	defer dl.Body.Close()

	return saver.Save(filename, dl.ContentType, dl.Body)
}
