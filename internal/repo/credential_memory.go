package repo

import (
	"context"
	"sync"
	"time"
)

type storedCredential struct {
	token     string
	expiresAt time.Time
}

// InMemoryCredentialRepository keeps credentials in process memory. Lost on restart.
type InMemoryCredentialRepository struct {
	mu          sync.Mutex
	credentials map[string]storedCredential
	now         func() time.Time
}

func NewInMemoryCredentialRepository() *InMemoryCredentialRepository {
	return &InMemoryCredentialRepository{
		credentials: map[string]storedCredential{},
		now:         time.Now,
	}
}

func credentialKey(sessionID, key string) string {
	return key + ":" + sessionID
}

func (r *InMemoryCredentialRepository) Load(_ context.Context, sessionID, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.credentials[credentialKey(sessionID, key)]
	if !ok {
		return "", ErrCredentialNotFound
	}
	if !c.expiresAt.IsZero() && !r.now().Before(c.expiresAt) {
		delete(r.credentials, credentialKey(sessionID, key))
		return "", ErrCredentialNotFound
	}
	return c.token, nil
}

func (r *InMemoryCredentialRepository) Save(_ context.Context, sessionID, key, token string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := storedCredential{token: token}
	if ttl > 0 {
		c.expiresAt = r.now().Add(ttl)
	}
	r.credentials[credentialKey(sessionID, key)] = c
	return nil
}

func (r *InMemoryCredentialRepository) Delete(_ context.Context, sessionID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.credentials, credentialKey(sessionID, key))
	return nil
}

// Len returns the number of stored credentials, expired ones included.
func (r *InMemoryCredentialRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.credentials)
}
