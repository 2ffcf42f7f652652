package repo

import (
	"context"
	"io"
)

// Download is a binary payload streamed from the backend. The caller closes Body.
type Download struct {
	Body        io.ReadCloser
	ContentType string
}

type ExportRepository interface {
	Export(ctx context.Context, dataType, format string) (Download, error)
}
