package repo

import (
	"context"
	"errors"
	"time"
)

// ErrCredentialNotFound is returned when no credential is stored for a session.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialRepository is the durable storage of bearer tokens, keyed by session id and a fixed storage key.
type CredentialRepository interface {
	Load(ctx context.Context, sessionID, key string) (string, error)
	// Save stores token; a zero ttl means no expiry.
	Save(ctx context.Context, sessionID, key, token string, ttl time.Duration) error
	// Delete is idempotent.
	Delete(ctx context.Context, sessionID, key string) error
}
