package ui

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/rogerio-castellano/store-dashboard/internal/backend"
)

type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabStock     Tab = "stock"
	TabSales     Tab = "sales"
	TabLosses    Tab = "losses"
	TabAnalysis  Tab = "analysis"
)

// Tabs is the closed set of tabs in sidebar order.
var Tabs = []Tab{TabDashboard, TabStock, TabSales, TabLosses, TabAnalysis}

var tabLabels = map[Tab]string{
	TabDashboard: MsgTabDashboard,
	TabStock:     MsgTabStock,
	TabSales:     MsgTabSales,
	TabLosses:    MsgTabLosses,
	TabAnalysis:  MsgTabAnalysis,
}

func ParseTab(s string) (Tab, bool) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

type Screen int

const (
	ScreenLogin Screen = iota
	ScreenApp
)

var (
	// ErrSuperseded is returned when another tab was selected while this one was loading.
	ErrSuperseded = errors.New("tab load superseded")
	ErrUnknownTab = errors.New("unknown tab")
)

// Content is what fills the main region: a template name and its view model.
type Content struct {
	Template string
	Data     any
}

// Request carries tab parameters and, after a failed action, the form to show again
// or the error to display next to the content.
type Request struct {
	Query url.Values
	Form  any
	Error string
}

type Loader func(ctx context.Context, req Request) (Content, error)

type SidebarItem struct {
	Tab    Tab
	Label  string
	Active bool
}

// Page is a snapshot of the shell for rendering.
type Page struct {
	Screen  Screen
	Active  Tab
	Sidebar []SidebarItem
	Loading bool
	Content Content
	Notice  string
}

// ErrorView is the inline error block that replaces a failed tab's content.
type ErrorView struct {
	Message string
}

// Shell tracks the screen, the active tab and the content of one session.
// Only the most recent tab selection may write content.
type Shell struct {
	mu         sync.Mutex
	loaders    map[Tab]Loader
	msg        *Messages
	screen     Screen
	active     Tab
	generation uint64
	cancel     context.CancelFunc
	loading    bool
	content    Content
	notice     string
}

func NewShell(loaders map[Tab]Loader, msg *Messages) *Shell {
	return &Shell{
		loaders: loaders,
		msg:     msg,
		screen:  ScreenLogin,
		active:  TabDashboard,
	}
}

// ShowApp switches to the authenticated screen with the dashboard active.
func (s *Shell) ShowApp() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.screen = ScreenApp
	s.notice = ""
}

// ShowLogin switches to the login screen and drops any in-flight load.
func (s *Shell) ShowLogin(notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.screen = ScreenLogin
	s.notice = notice
}

func (s *Shell) resetLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.active = TabDashboard
	s.loading = false
	s.content = Content{}
}

func (s *Shell) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

func (s *Shell) Page() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageLocked()
}

func (s *Shell) pageLocked() Page {
	items := make([]SidebarItem, len(Tabs))
	for i, t := range Tabs {
		items[i] = SidebarItem{Tab: t, Label: s.msg.T(tabLabels[t]), Active: t == s.active}
	}
	return Page{
		Screen:  s.screen,
		Active:  s.active,
		Sidebar: items,
		Loading: s.loading,
		Content: s.content,
		Notice:  s.notice,
	}
}

// SelectTab activates tab and runs its loader. Loader failures become an inline
// error block, except session expiry, which leaves the shell on the login screen.
// If another selection happens meanwhile, the result is dropped and ErrSuperseded returned.
func (s *Shell) SelectTab(ctx context.Context, tab Tab, req Request) (Page, error) {
	s.mu.Lock()
	if s.screen != ScreenApp {
		p := s.pageLocked()
		s.mu.Unlock()
		return p, backend.ErrSessionExpired
	}
	loader, ok := s.loaders[tab]
	if !ok {
		p := s.pageLocked()
		s.mu.Unlock()
		return p, ErrUnknownTab
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.active = tab
	s.loading = true
	s.content = Content{}
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	content, err := loader(loadCtx, req)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if errors.Is(err, backend.ErrSessionExpired) {
		if s.screen == ScreenApp {
			s.resetLocked()
			s.screen = ScreenLogin
			s.notice = s.msg.T(MsgSessionExpired)
		}
		return s.pageLocked(), err
	}
	if gen != s.generation {
		return s.pageLocked(), ErrSuperseded
	}

	s.cancel = nil
	s.loading = false
	if err != nil {
		content = Content{Template: "error", Data: ErrorView{Message: s.msg.Error(err)}}
	}
	s.content = content
	return s.pageLocked(), nil
}
