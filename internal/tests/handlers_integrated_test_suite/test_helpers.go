package handlers_integrated_test_suite

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/rogerio-castellano/store-dashboard/internal/backendtest"
	"github.com/rogerio-castellano/store-dashboard/internal/db"
	api "github.com/rogerio-castellano/store-dashboard/internal/http"
	"github.com/rogerio-castellano/store-dashboard/internal/http/handlers"
	"github.com/rogerio-castellano/store-dashboard/internal/repo"
	"github.com/rogerio-castellano/store-dashboard/internal/session"
	"github.com/rogerio-castellano/store-dashboard/internal/ui"
)

// startDashboard wires a fresh dashboard process in front of fake, using store for credentials.
func startDashboard(t *testing.T, fake *backendtest.Server, store repo.CredentialRepository) *httptest.Server {
	t.Helper()

	client, err := backend.NewClient(fake.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	msg := ui.NewMessages("en", "")
	renderer, err := ui.NewRenderer(msg)
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}

	api.SetSessionManager(session.NewManager(client, store, msg, session.Options{TTL: time.Hour}))
	api.SetLoginLimiter(nil)
	api.SetCookie("integration_session", false)
	handlers.SetRenderer(renderer)
	handlers.SetMessages(msg)

	server := httptest.NewServer(api.NewRouter())
	t.Cleanup(server.Close)
	return server
}

func openSQLite(t *testing.T, path string) *repo.SQLCredentialRepository {
	t.Helper()

	database, err := db.Connect("sqlite", path)
	if err != nil {
		t.Fatalf("❌ Could not connect to database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return newSQLStore(t, database, "sqlite")
}

func newSQLStore(t *testing.T, database *sql.DB, driver string) *repo.SQLCredentialRepository {
	t.Helper()

	dialect, err := repo.DialectFor(driver)
	if err != nil {
		t.Fatalf("unexpected dialect error: %v", err)
	}
	store, err := repo.NewSQLCredentialRepository(database, dialect)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

// browser keeps cookies across dashboard restarts and does not follow redirects.
type browser struct {
	client *http.Client
}

func newBrowser() *browser {
	jar, _ := cookiejar.New(nil)
	return &browser{client: &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

type response struct {
	status   int
	location string
	header   http.Header
	body     string
}

func (b *browser) do(t *testing.T, method, target string, form url.Values) response {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, target, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := b.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return response{status: resp.StatusCode, location: resp.Header.Get("Location"), header: resp.Header, body: string(data)}
}

// carryCookies copies the browser's cookies from one dashboard URL to another,
// as a reload against a restarted process on a new port would.
func (b *browser) carryCookies(from, to string) {
	src, _ := url.Parse(from)
	dst, _ := url.Parse(to)
	b.client.Jar.SetCookies(dst, b.client.Jar.Cookies(src))
}

func (b *browser) login(t *testing.T, base string) {
	t.Helper()
	r := b.do(t, http.MethodPost, base+"/login", url.Values{"username": {backendtest.Username}, "password": {backendtest.Password}})
	if r.status != http.StatusSeeOther {
		t.Fatalf("expected login redirect, got %d", r.status)
	}
}
