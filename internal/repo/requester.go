package repo

import (
	"context"
	"net/http"
	"net/url"
)

// Requester issues authorized calls against the backend. The session controller implements it.
type Requester interface {
	// DoJSON sends body as JSON and decodes a 2xx response into out (out may be nil).
	DoJSON(ctx context.Context, method, path string, query url.Values, body, out any) error
	// AuthorizedRequest returns the raw response of a successful (2xx) call.
	AuthorizedRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error)
}
