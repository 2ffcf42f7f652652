package http_test

import (
	"context"
	"errors"
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
	api "github.com/rogerio-castellano/store-dashboard/internal/http"
	"github.com/rogerio-castellano/store-dashboard/internal/http/handlers"
	rl "github.com/rogerio-castellano/store-dashboard/internal/http/rate_limiter"
	"github.com/rogerio-castellano/store-dashboard/internal/models"
	"github.com/rogerio-castellano/store-dashboard/internal/repo"
	"github.com/rogerio-castellano/store-dashboard/internal/session"
	"github.com/rogerio-castellano/store-dashboard/internal/ui"
	"github.com/shopspring/decimal"
)

type env struct {
	backend *backendtest.Server
	server  *httptest.Server
	client  *http.Client
	store   repo.CredentialRepository
	manager *session.Manager
}

func setup(t *testing.T, limiter *rl.Limiter) *env {
	t.Helper()

	fake := backendtest.New(t)
	client, err := backend.NewClient(fake.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	msg := ui.NewMessages("en", "")
	renderer, err := ui.NewRenderer(msg)
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}

	store := repo.NewInMemoryCredentialRepository()
	manager := session.NewManager(client, store, msg, session.Options{})
	api.SetSessionManager(manager)
	api.SetLoginLimiter(limiter)
	api.SetCookie("test_session", false)
	handlers.SetRenderer(renderer)
	handlers.SetMessages(msg)

	server := httptest.NewServer(api.NewRouter())
	t.Cleanup(server.Close)

	jar, _ := cookiejar.New(nil)
	browser := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &env{backend: fake, server: server, client: browser, store: store, manager: manager}
}

type page struct {
	status   int
	location string
	header   http.Header
	body     string
}

func (e *env) do(t *testing.T, method, path string, form url.Values) page {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, e.server.URL+path, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	return page{status: resp.StatusCode, location: resp.Header.Get("Location"), header: resp.Header, body: string(data)}
}

func (e *env) login(t *testing.T) {
	t.Helper()
	p := e.do(t, http.MethodPost, "/login", url.Values{"username": {backendtest.Username}, "password": {backendtest.Password}})
	if p.status != http.StatusSeeOther || p.location != "/tabs/dashboard" {
		t.Fatalf("expected redirect to dashboard, got %d %q", p.status, p.location)
	}
}

func TestHealth(t *testing.T) {
	e := setup(t, nil)
	if p := e.do(t, http.MethodGet, "/healthz", nil); p.status != http.StatusOK || p.body != "ok" {
		t.Errorf("expected 200 ok, got %d %q", p.status, p.body)
	}
}

func TestTabs_RequireLogin(t *testing.T) {
	e := setup(t, nil)
	p := e.do(t, http.MethodGet, "/tabs/dashboard", nil)
	if p.status != http.StatusSeeOther || p.location != "/login" {
		t.Errorf("expected redirect to /login, got %d %q", p.status, p.location)
	}
	if n := len(e.backend.Requests()); n != 0 {
		t.Errorf("expected no backend call, got %d", n)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	e := setup(t, nil)
	p := e.do(t, http.MethodPost, "/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	if p.status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", p.status)
	}
	if !strings.Contains(p.body, "Incorrect username or password.") {
		t.Error("expected inline credentials error")
	}
}

func TestLogin_ShowsDashboard(t *testing.T) {
	e := setup(t, nil)
	e.login(t)

	p := e.do(t, http.MethodGet, "/tabs/dashboard", nil)
	if p.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", p.status)
	}
	if !strings.Contains(p.body, "Revenue today") {
		t.Error("expected dashboard metrics")
	}
	if !strings.Contains(p.body, `href="/tabs/dashboard" class="active"`) {
		t.Error("expected dashboard marked active")
	}
	if n := e.backend.Count(http.MethodGet, "/api/dashboard"); n != 1 {
		t.Errorf("expected one dashboard fetch, got %d", n)
	}

	if p := e.do(t, http.MethodGet, "/login", nil); p.status != http.StatusSeeOther {
		t.Errorf("expected logged-in visit to /login to redirect, got %d", p.status)
	}
}

func TestUnknownTab(t *testing.T) {
	e := setup(t, nil)
	e.login(t)
	if p := e.do(t, http.MethodGet, "/tabs/reports", nil); p.status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", p.status)
	}
}

func TestSessionExpired(t *testing.T) {
	e := setup(t, nil)
	e.login(t)
	e.backend.RevokeTokens()

	p := e.do(t, http.MethodGet, "/tabs/stock", nil)
	if p.status != http.StatusSeeOther || p.location != "/login?expired=1" {
		t.Fatalf("expected redirect to expired login, got %d %q", p.status, p.location)
	}

	p = e.do(t, http.MethodGet, p.location, nil)
	if !strings.Contains(p.body, "Your session has expired.") {
		t.Error("expected session expired notice")
	}

	e.backend.ResetRequests()
	p = e.do(t, http.MethodGet, "/tabs/stock", nil)
	if p.status != http.StatusSeeOther {
		t.Errorf("expected redirect, got %d", p.status)
	}
	if n := len(e.backend.Requests()); n != 0 {
		t.Errorf("expected no further backend calls, got %d", n)
	}
}

// sessionID is the dashboard session cookie the browser currently holds.
func (e *env) sessionID(t *testing.T) string {
	t.Helper()
	u, _ := url.Parse(e.server.URL)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == "test_session" {
			return c.Value
		}
	}
	t.Fatal("expected a session cookie")
	return ""
}

func TestSessionExpired_Actions(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		form   url.Values
	}{
		{"create product", http.MethodPost, "/stock/products", url.Values{"name": {"Sucre"}, "purchase_price": {"300"}, "sale_price": {"400"}, "quantity": {"5"}}},
		{"update product", http.MethodPost, "/stock/products", url.Values{"id": {"1"}, "name": {"Riz"}, "purchase_price": {"500"}, "sale_price": {"700"}, "quantity": {"10"}}},
		{"delete product", http.MethodPost, "/stock/products/1/delete", url.Values{"confirm": {"yes"}}},
		{"record sale", http.MethodPost, "/sales", url.Values{"product_id": {"1"}, "quantity": {"1"}}},
		{"record loss", http.MethodPost, "/losses", url.Values{"product_id": {"1"}, "quantity": {"1"}}},
		{"export", http.MethodGet, "/export?type=stock&format=pdf", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t, nil)
			e.login(t)
			id := e.sessionID(t)
			e.backend.RevokeTokens()
			e.backend.ResetRequests()

			p := e.do(t, tt.method, tt.path, tt.form)
			if p.status != http.StatusSeeOther || p.location != "/login?expired=1" {
				t.Fatalf("expected redirect to expired login, got %d %q", p.status, p.location)
			}
			if n := len(e.backend.Requests()); n != 1 {
				t.Errorf("expected exactly the rejected call, got %d", n)
			}

			s, err := e.manager.Get(context.Background(), id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Controller.Authenticated() {
				t.Error("expected credential cleared")
			}
			if _, err := e.store.Load(context.Background(), id, session.DefaultStorageKey); !errors.Is(err, repo.ErrCredentialNotFound) {
				t.Errorf("expected stored credential removed, got %v", err)
			}

			e.backend.ResetRequests()
			p = e.do(t, tt.method, tt.path, tt.form)
			if p.status != http.StatusSeeOther || p.location != "/login" {
				t.Errorf("expected redirect to /login, got %d %q", p.status, p.location)
			}
			if n := len(e.backend.Requests()); n != 0 {
				t.Errorf("expected no further backend calls, got %d", n)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	e := setup(t, nil)
	e.login(t)

	for i := 0; i < 2; i++ {
		if p := e.do(t, http.MethodPost, "/logout", nil); p.status != http.StatusSeeOther || p.location != "/login" {
			t.Fatalf("expected redirect to /login, got %d %q", p.status, p.location)
		}
	}
	if p := e.do(t, http.MethodGet, "/tabs/dashboard", nil); p.location != "/login" {
		t.Errorf("expected logged out, got %d %q", p.status, p.location)
	}
}

func TestSaveProduct(t *testing.T) {
	e := setup(t, nil)
	e.login(t)

	form := url.Values{"name": {"Riz"}, "purchase_price": {"500"}, "sale_price": {"650,5"}, "quantity": {"10"}}
	p := e.do(t, http.MethodPost, "/stock/products", form)
	if p.status != http.StatusSeeOther || p.location != "/tabs/stock" {
		t.Fatalf("expected redirect to stock, got %d %q", p.status, p.location)
	}
	got, ok := e.backend.Product(1)
	if !ok || got.Name != "Riz" || !got.SalePrice.Equal(decimal.RequireFromString("650.5")) {
		t.Errorf("unexpected product %+v", got)
	}

	edit := url.Values{"id": {"1"}, "name": {"Riz"}, "purchase_price": {"500"}, "sale_price": {"700"}, "quantity": {"8"}}
	if p := e.do(t, http.MethodPost, "/stock/products", edit); p.status != http.StatusSeeOther {
		t.Fatalf("expected redirect after edit, got %d", p.status)
	}
	if n := e.backend.Count(http.MethodPut, "/api/produits"); n != 1 {
		t.Errorf("expected one PUT, got %d", n)
	}
	if got, _ := e.backend.Product(1); got.Quantity != 8 {
		t.Errorf("expected quantity 8, got %d", got.Quantity)
	}
}

func TestSaveProduct_InvalidKeepsModal(t *testing.T) {
	e := setup(t, nil)
	e.login(t)

	form := url.Values{"name": {""}, "purchase_price": {"1.234"}, "sale_price": {"2"}, "quantity": {"1"}}
	p := e.do(t, http.MethodPost, "/stock/products", form)
	if p.status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", p.status)
	}
	if !strings.Contains(p.body, `class="modal"`) || !strings.Contains(p.body, "Name is required.") {
		t.Error("expected modal with field errors")
	}
	if n := e.backend.Count(http.MethodPost, "/api/produits"); n != 0 {
		t.Errorf("expected no POST, got %d", n)
	}
}

func TestSaveProduct_BackendErrorVerbatim(t *testing.T) {
	e := setup(t, nil)
	e.backend.Seed(models.Product{Name: "Riz", Quantity: 1})
	e.login(t)

	form := url.Values{"name": {"riz"}, "purchase_price": {"1"}, "sale_price": {"2"}, "quantity": {"1"}}
	p := e.do(t, http.MethodPost, "/stock/products", form)
	if p.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", p.status)
	}
	if !strings.Contains(p.body, "Un produit avec ce nom existe déjà") {
		t.Error("expected backend message verbatim")
	}
	if !strings.Contains(p.body, `class="modal"`) {
		t.Error("expected modal to stay open")
	}
}

func TestDeleteProduct_NeedsConfirmation(t *testing.T) {
	e := setup(t, nil)
	e.backend.Seed(models.Product{Name: "Riz", Quantity: 1})
	e.login(t)

	p := e.do(t, http.MethodGet, "/stock/products/1/delete", nil)
	if p.status != http.StatusOK || !strings.Contains(p.body, "Delete product Riz?") {
		t.Fatalf("expected confirmation prompt, got %d", p.status)
	}

	p = e.do(t, http.MethodPost, "/stock/products/1/delete", url.Values{})
	if p.status != http.StatusSeeOther || p.location != "/stock/products/1/delete" {
		t.Fatalf("expected redirect to confirmation, got %d %q", p.status, p.location)
	}
	if n := e.backend.Count(http.MethodDelete, "/api/produits/1"); n != 0 {
		t.Fatalf("expected no DELETE without confirmation, got %d", n)
	}

	p = e.do(t, http.MethodPost, "/stock/products/1/delete", url.Values{"confirm": {"yes"}})
	if p.status != http.StatusSeeOther || p.location != "/tabs/stock" {
		t.Fatalf("expected redirect to stock, got %d %q", p.status, p.location)
	}
	if n := e.backend.Count(http.MethodDelete, "/api/produits/1"); n != 1 {
		t.Errorf("expected one DELETE, got %d", n)
	}
	if _, ok := e.backend.Product(1); ok {
		t.Error("expected product removed")
	}
}

func TestRecordSale(t *testing.T) {
	e := setup(t, nil)
	e.backend.Seed(models.Product{Name: "Riz", SalePrice: decimal.NewFromInt(500), Quantity: 5})
	e.login(t)

	p := e.do(t, http.MethodPost, "/sales", url.Values{"product_id": {"1"}, "quantity": {"0"}})
	if p.status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", p.status)
	}
	if n := e.backend.Count(http.MethodPost, "/api/ventes"); n != 0 {
		t.Fatalf("expected no POST for quantity 0, got %d", n)
	}

	p = e.do(t, http.MethodPost, "/sales", url.Values{"product_id": {"1"}, "quantity": {"2"}})
	if p.status != http.StatusSeeOther || p.location != "/tabs/sales" {
		t.Fatalf("expected redirect to sales, got %d %q", p.status, p.location)
	}

	p = e.do(t, http.MethodGet, "/tabs/sales", nil)
	if !strings.Contains(p.body, "Riz (3)") {
		t.Error("expected re-fetched quantity in the product options")
	}
}

func TestRecordLoss_OutOfStockProductHidden(t *testing.T) {
	e := setup(t, nil)
	e.backend.Seed(models.Product{Name: "Huile", Quantity: 0})
	e.login(t)

	p := e.do(t, http.MethodGet, "/tabs/losses", nil)
	if strings.Contains(p.body, "Huile (") {
		t.Error("expected out-of-stock product not offered")
	}
	if !strings.Contains(p.body, "No product in stock.") {
		t.Error("expected empty stock message")
	}
}

func TestExport(t *testing.T) {
	e := setup(t, nil)
	e.login(t)
	e.backend.ResetRequests()

	p := e.do(t, http.MethodGet, "/export?type=stock&format=pdf", nil)
	if p.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", p.status)
	}
	if got := p.header.Get("Content-Disposition"); got != `attachment; filename="export_stock.pdf"` {
		t.Errorf("unexpected Content-Disposition %q", got)
	}
	if p.body != string(backendtest.ExportPayload("stock", "pdf")) {
		t.Errorf("unexpected body %q", p.body)
	}
	reqs := e.backend.Requests()
	if len(reqs) != 1 || reqs[0].Path != "/api/export" || !strings.HasPrefix(reqs[0].Authorization, "Bearer ") {
		t.Errorf("expected one authorized export request, got %+v", reqs)
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	e := setup(t, nil)
	e.login(t)
	e.backend.ResetRequests()

	if p := e.do(t, http.MethodGet, "/export?type=stock&format=csv", nil); p.status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", p.status)
	}
	if n := len(e.backend.Requests()); n != 0 {
		t.Errorf("expected no backend call, got %d", n)
	}
}

func TestLoginRateLimit(t *testing.T) {
	e := setup(t, rl.New(0.001, 1))
	form := url.Values{"username": {"admin"}, "password": {"wrong"}}

	if p := e.do(t, http.MethodPost, "/login", form); p.status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", p.status)
	}
	if p := e.do(t, http.MethodPost, "/login", form); p.status != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", p.status)
	}
	if n := e.backend.Count(http.MethodPost, "/token"); n != 1 {
		t.Errorf("expected one token request, got %d", n)
	}
}
