package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/store-dashboard/internal/chart"
	"github.com/rogerio-castellano/store-dashboard/internal/repo"
	"github.com/rogerio-castellano/store-dashboard/internal/ui"
)

var ErrInvalidSessionID = errors.New("invalid session id")

// Session is everything the dashboard keeps for one browser.
type Session struct {
	ID         string
	Controller *Controller
	Shell      *ui.Shell
	Views      *ui.Views
	Canvas     *chart.Canvas

	lastSeen time.Time

	restoreMu sync.Mutex
	restored  bool
}

// restore loads the stored credential once. Callers arriving meanwhile wait for it;
// a failed load is retried on the next request.
func (s *Session) restore(ctx context.Context) error {
	s.restoreMu.Lock()
	defer s.restoreMu.Unlock()
	if s.restored {
		return nil
	}
	if _, err := s.Controller.Restore(ctx); err != nil {
		return err
	}
	s.restored = true
	return nil
}

// Manager creates sessions on first use and restores their stored credential.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	api      Backend
	store    repo.CredentialRepository
	msg      *ui.Messages
	opts     Options
}

func NewManager(api Backend, store repo.CredentialRepository, msg *ui.Messages, opts Options) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		api:      api,
		store:    store,
		msg:      msg,
		opts:     opts,
	}
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// Get returns the session for id, building it if this process has not seen it yet.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		s.lastSeen = time.Now()
	} else {
		s = m.build(id)
		m.sessions[id] = s
	}
	m.mu.Unlock()

	return s, s.restore(ctx)
}

func (m *Manager) build(id string) *Session {
	ctrl := NewController(m.api, m.store, id, m.opts)
	canvas := chart.NewCanvas(chart.DefaultWidth, chart.DefaultHeight)
	views := ui.NewViews(ctrl, canvas, m.msg)
	shell := ui.NewShell(views.Loaders(), m.msg)

	ctrl.OnLogin(shell.ShowApp)
	ctrl.OnLogout(func(expired bool) {
		notice := ""
		if expired {
			notice = m.msg.T(ui.MsgSessionExpired)
		}
		shell.ShowLogin(notice)
		canvas.Dispose()
	})

	return &Session{
		ID:         id,
		Controller: ctrl,
		Shell:      shell,
		Views:      views,
		Canvas:     canvas,
		lastSeen:   time.Now(),
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Evict drops in-memory sessions idle for longer than idle. Stored credentials stay,
// so an evicted browser is restored on its next request.
func (m *Manager) Evict(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if time.Since(s.lastSeen) > idle {
			s.Canvas.Dispose()
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartCleanupLoop evicts idle sessions every interval until ctx is done.
func (m *Manager) StartCleanupLoop(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Evict(idle)
		}
	}
}
