package repo

import (
	"context"
	"net/http"
	"net/url"
)

type APIExportRepository struct {
	api Requester
}

func NewAPIExportRepository(api Requester) *APIExportRepository {
	return &APIExportRepository{api: api}
}

// Export fetches the generated file with the session's bearer credential.
func (r *APIExportRepository) Export(ctx context.Context, dataType, format string) (Download, error) {
	q := url.Values{}
	q.Set("data_type", dataType)
	q.Set("file_format", format)

	resp, err := r.api.AuthorizedRequest(ctx, http.MethodGet, "/api/export", q, nil)
	if err != nil {
		return Download{}, err
	}
	return Download{Body: resp.Body, ContentType: resp.Header.Get("Content-Type")}, nil
}
