package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrInvalidCredentials is returned by the token endpoint for bad username/password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is a 401 from an authorized endpoint.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired means the credential was rejected or dropped and the user must log in again.
	ErrSessionExpired = errors.New("session expired")
)

// ValidationError is a backend-rejected request. Message is the backend's text, verbatim.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("backend rejected request (%d): %s", e.Status, e.Message)
}

// NetworkError wraps transport failures, including timeouts.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

const maxErrorBody = 64 << 10

// DecodeError turns a non-2xx response into one of the package errors.
// It reads but does not close the body.
func DecodeError(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &ValidationError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
}

// errorMessage extracts the "detail" field FastAPI-style backends send.
// detail is either a string or a list of {"msg": "..."} objects.
func errorMessage(status int, raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Detail) > 0 {
		var text string
		if err := json.Unmarshal(body.Detail, &text); err == nil {
			return text
		}

		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}

	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(status)
}
