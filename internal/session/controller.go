// Package session holds the bearer credential of one browser session and
// gates every backend call on it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rogerio-castellano/store-dashboard/internal/auth"
	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/rogerio-castellano/store-dashboard/internal/repo"
)

// DefaultStorageKey is the fixed key the credential is stored under.
const DefaultStorageKey = "token"

// Backend is the transport the controller drives. *backend.Client implements it.
type Backend interface {
	RequestToken(ctx context.Context, username, password string) (string, error)
	Do(ctx context.Context, token, method, path string, query url.Values, body any) (*http.Response, error)
}

type Options struct {
	StorageKey string
	// TTL caps how long a stored credential lives. Zero keeps it until the token itself expires.
	TTL time.Duration
}

// Controller owns the credential of one session. At most one credential is held at a time.
type Controller struct {
	mu       sync.Mutex
	api      Backend
	store    repo.CredentialRepository
	id       string
	opts     Options
	token    string
	epoch    uint64
	onLogin  []func()
	onLogout []func(expired bool)
	now      func() time.Time
}

func NewController(api Backend, store repo.CredentialRepository, sessionID string, opts Options) *Controller {
	if opts.StorageKey == "" {
		opts.StorageKey = DefaultStorageKey
	}
	return &Controller{
		api:   api,
		store: store,
		id:    sessionID,
		opts:  opts,
		now:   time.Now,
	}
}

// OnLogin registers fn to run after every successful login.
func (c *Controller) OnLogin(fn func()) {
	c.mu.Lock()
	c.onLogin = append(c.onLogin, fn)
	c.mu.Unlock()
}

// OnLogout registers fn to run whenever the credential is dropped.
// expired is true when the backend rejected the credential.
func (c *Controller) OnLogout(fn func(expired bool)) {
	c.mu.Lock()
	c.onLogout = append(c.onLogout, fn)
	c.mu.Unlock()
}

func (c *Controller) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != ""
}

// Restore loads a previously stored credential. It reports whether one was found.
func (c *Controller) Restore(ctx context.Context) (bool, error) {
	token, err := c.store.Load(ctx, c.id, c.opts.StorageKey)
	if errors.Is(err, repo.ErrCredentialNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load credential: %w", err)
	}
	if auth.Expired(token, c.now()) {
		if err := c.store.Delete(ctx, c.id, c.opts.StorageKey); err != nil {
			log.Printf("session %s: failed to delete expired credential: %v", c.id, err)
		}
		return false, nil
	}

	c.mu.Lock()
	c.token = token
	c.epoch++
	listeners := append([]func(){}, c.onLogin...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return true, nil
}

// Login exchanges the credentials for a token, keeps it in memory and in the store,
// then notifies login listeners. On failure nothing changes.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	token, err := c.api.RequestToken(ctx, username, password)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.token = token
	c.epoch++
	listeners := append([]func(){}, c.onLogin...)
	c.mu.Unlock()

	if err := c.store.Save(ctx, c.id, c.opts.StorageKey, token, c.ttl(token)); err != nil {
		log.Printf("session %s: credential kept in memory only: %v", c.id, err)
	}

	for _, fn := range listeners {
		fn()
	}
	return nil
}

func (c *Controller) ttl(token string) time.Duration {
	ttl := c.opts.TTL
	exp, err := auth.Expiry(token)
	if err != nil {
		return ttl
	}
	left := exp.Sub(c.now())
	if left < time.Second {
		left = time.Second
	}
	if ttl == 0 || left < ttl {
		ttl = left
	}
	return ttl
}

// Logout drops the credential. Calling it without a credential is a no-op apart from the notification.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	c.token = ""
	c.epoch++
	listeners := append([]func(bool){}, c.onLogout...)
	c.mu.Unlock()

	c.forget(ctx)
	for _, fn := range listeners {
		fn(false)
	}
}

// expire invalidates the credential that was current at epoch. A newer login is left alone.
func (c *Controller) expire(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.token = ""
	c.epoch++
	listeners := append([]func(bool){}, c.onLogout...)
	c.mu.Unlock()

	c.forget(ctx)
	for _, fn := range listeners {
		fn(true)
	}
}

func (c *Controller) forget(ctx context.Context) {
	// The request that triggered this may already be cancelled.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	if err := c.store.Delete(ctx, c.id, c.opts.StorageKey); err != nil {
		log.Printf("session %s: failed to delete credential: %v", c.id, err)
	}
}

func (c *Controller) current(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch == epoch
}

// AuthorizedRequest sends an authenticated call and returns the response of a 2xx answer.
// Without a credential, or when the backend answers 401, it fails with backend.ErrSessionExpired;
// a 401 also drops the credential and sends the session back to the login screen.
func (c *Controller) AuthorizedRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	c.mu.Lock()
	token, epoch := c.token, c.epoch
	c.mu.Unlock()

	if token == "" {
		return nil, backend.ErrSessionExpired
	}
	if auth.Expired(token, c.now()) {
		c.expire(ctx, epoch)
		return nil, backend.ErrSessionExpired
	}

	resp, err := c.api.Do(ctx, token, method, path, query, body)
	if err != nil {
		return nil, err
	}

	// Logged out or logged in again while this was in flight.
	if !c.current(epoch) {
		discard(resp)
		return nil, backend.ErrSessionExpired
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp, nil
	}

	err = backend.DecodeError(resp)
	discard(resp)
	if errors.Is(err, backend.ErrUnauthorized) {
		c.expire(ctx, epoch)
		return nil, backend.ErrSessionExpired
	}
	return nil, err
}

// DoJSON is AuthorizedRequest with a JSON response decoded into out. out may be nil.
func (c *Controller) DoJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.AuthorizedRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
