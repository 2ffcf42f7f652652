package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/rogerio-castellano/store-dashboard/internal/backendtest"
	"github.com/rogerio-castellano/store-dashboard/internal/models"
	"github.com/rogerio-castellano/store-dashboard/internal/repo"
	"github.com/rogerio-castellano/store-dashboard/internal/ui"
	"github.com/shopspring/decimal"
)

type harness struct {
	server  *backendtest.Server
	store   *repo.InMemoryCredentialRepository
	manager *Manager
	session *Session
}

func setup(t *testing.T, timeout time.Duration) *harness {
	t.Helper()

	server := backendtest.New(t)
	client, err := backend.NewClient(server.URL, timeout)
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	store := repo.NewInMemoryCredentialRepository()
	manager := NewManager(client, store, ui.NewMessages("en", ""), Options{TTL: time.Hour})

	s, err := manager.Get(context.Background(), NewID())
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	return &harness{server: server, store: store, manager: manager, session: s}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	if err := h.session.Controller.Login(context.Background(), backendtest.Username, backendtest.Password); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	h := setup(t, time.Second)
	h.login(t)

	if !h.session.Controller.Authenticated() {
		t.Fatal("expected credential in memory")
	}
	if _, err := h.store.Load(context.Background(), h.session.ID, DefaultStorageKey); err != nil {
		t.Errorf("expected stored credential, got %v", err)
	}
	page := h.session.Shell.Page()
	if page.Screen != ui.ScreenApp || page.Active != ui.TabDashboard {
		t.Errorf("expected app screen on dashboard, got %v / %q", page.Screen, page.Active)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	h := setup(t, time.Second)

	err := h.session.Controller.Login(context.Background(), backendtest.Username, "wrong")
	if !errors.Is(err, backend.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if h.session.Controller.Authenticated() {
		t.Error("expected no credential")
	}
	if h.store.Len() != 0 {
		t.Errorf("expected empty store, got %d", h.store.Len())
	}
	if h.session.Shell.Screen() != ui.ScreenLogin {
		t.Error("expected login screen")
	}
}

func TestLogin_ServerUnreachable(t *testing.T) {
	h := setup(t, time.Second)
	h.server.Close()

	err := h.session.Controller.Login(context.Background(), backendtest.Username, backendtest.Password)
	if !backend.IsNetwork(err) {
		t.Errorf("expected NetworkError, got %v", err)
	}
}

func TestAuthorizedRequest_WithoutCredential(t *testing.T) {
	h := setup(t, time.Second)

	_, err := h.session.Controller.AuthorizedRequest(context.Background(), http.MethodGet, "/api/produits", nil, nil)
	if !errors.Is(err, backend.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if n := len(h.server.Requests()); n != 0 {
		t.Errorf("expected no request, got %d", n)
	}
}

func TestAuthorizedRequest_SendsBearer(t *testing.T) {
	h := setup(t, time.Second)
	h.login(t)

	var products []models.Product
	if err := h.session.Controller.DoJSON(context.Background(), http.MethodGet, "/api/produits", nil, nil, &products); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reqs := h.server.Requests()
	last := reqs[len(reqs)-1]
	if last.Path != "/api/produits" || len(last.Authorization) <= len("Bearer ") {
		t.Errorf("expected bearer header on /api/produits, got %+v", last)
	}
}

func TestUnauthorized_InvalidatesSession(t *testing.T) {
	h := setup(t, time.Second)
	h.login(t)
	h.server.RevokeTokens()

	page, err := h.session.Shell.SelectTab(context.Background(), ui.TabStock, ui.Request{})
	if !errors.Is(err, backend.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if page.Screen != ui.ScreenLogin {
		t.Errorf("expected login screen, got %v", page.Screen)
	}
	if page.Notice == "" {
		t.Error("expected session expired notice")
	}
	if h.session.Controller.Authenticated() {
		t.Error("expected credential dropped from memory")
	}
	if _, err := h.store.Load(context.Background(), h.session.ID, DefaultStorageKey); !errors.Is(err, repo.ErrCredentialNotFound) {
		t.Errorf("expected credential dropped from store, got %v", err)
	}

	h.server.ResetRequests()
	_, err = h.session.Controller.AuthorizedRequest(context.Background(), http.MethodGet, "/api/produits", nil, nil)
	if !errors.Is(err, backend.ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if n := len(h.server.Requests()); n != 0 {
		t.Errorf("expected no further requests, got %d", n)
	}
}

func TestExpiredToken_NoRequest(t *testing.T) {
	h := setup(t, time.Second)
	h.server.SetTokenTTL(-time.Minute)
	h.login(t)
	h.server.ResetRequests()

	_, err := h.session.Controller.AuthorizedRequest(context.Background(), http.MethodGet, "/api/dashboard", nil, nil)
	if !errors.Is(err, backend.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if n := len(h.server.Requests()); n != 0 {
		t.Errorf("expected no request, got %d", n)
	}
	if h.session.Shell.Screen() != ui.ScreenLogin {
		t.Error("expected login screen")
	}
}

func TestLogout_Idempotent(t *testing.T) {
	h := setup(t, time.Second)
	h.login(t)
	h.server.ResetRequests()

	h.session.Controller.Logout(context.Background())
	h.session.Controller.Logout(context.Background())

	if h.session.Controller.Authenticated() {
		t.Error("expected no credential")
	}
	if h.store.Len() != 0 {
		t.Errorf("expected empty store, got %d", h.store.Len())
	}
	if h.session.Shell.Screen() != ui.ScreenLogin {
		t.Error("expected login screen")
	}
	if n := len(h.server.Requests()); n != 0 {
		t.Errorf("expected logout to stay local, got %d requests", n)
	}
}

func TestLateResponseAfterLogout(t *testing.T) {
	h := setup(t, 5*time.Second)
	h.login(t)
	h.server.SetDelay(200 * time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- h.session.Controller.DoJSON(context.Background(), http.MethodGet, "/api/dashboard", nil, nil, &models.DashboardSnapshot{})
	}()

	deadline := time.Now().Add(2 * time.Second)
	for h.server.Count(http.MethodGet, "/api/dashboard") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("request never reached the server")
		}
		time.Sleep(5 * time.Millisecond)
	}
	h.session.Controller.Logout(context.Background())

	if err := <-done; !errors.Is(err, backend.ErrSessionExpired) {
		t.Errorf("expected late response to be discarded, got %v", err)
	}
	if h.session.Shell.Screen() != ui.ScreenLogin {
		t.Error("expected login screen")
	}
}

func TestTimeout_IsNetworkError(t *testing.T) {
	h := setup(t, 50*time.Millisecond)
	h.login(t)
	h.server.SetDelay(500 * time.Millisecond)

	err := h.session.Controller.DoJSON(context.Background(), http.MethodGet, "/api/produits", nil, nil, &[]models.Product{})
	if !backend.IsNetwork(err) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if !h.session.Controller.Authenticated() {
		t.Error("expected credential kept after a timeout")
	}
}

func TestRestoreFromStore(t *testing.T) {
	h := setup(t, time.Second)
	h.login(t)

	client, _ := backend.NewClient(h.server.URL, time.Second)
	reloaded := NewManager(client, h.store, ui.NewMessages("en", ""), Options{})
	s, err := reloaded.Get(context.Background(), h.session.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Controller.Authenticated() {
		t.Fatal("expected credential restored")
	}
	if s.Shell.Screen() != ui.ScreenApp {
		t.Error("expected app screen after restore")
	}
}

// slowStore delays loads so concurrent first requests overlap the restore.
type slowStore struct {
	repo.CredentialRepository
	delay time.Duration
}

func (s slowStore) Load(ctx context.Context, sessionID, key string) (string, error) {
	time.Sleep(s.delay)
	return s.CredentialRepository.Load(ctx, sessionID, key)
}

func TestRestoreFromStore_ConcurrentFirstRequests(t *testing.T) {
	h := setup(t, time.Second)
	h.login(t)

	client, _ := backend.NewClient(h.server.URL, time.Second)
	reloaded := NewManager(client, slowStore{CredentialRepository: h.store, delay: 50 * time.Millisecond}, ui.NewMessages("en", ""), Options{})

	const n = 8
	var wg sync.WaitGroup
	results := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := reloaded.Get(context.Background(), h.session.ID)
			results <- err == nil && s.Controller.Authenticated()
		}()
	}
	wg.Wait()
	close(results)

	for ok := range results {
		if !ok {
			t.Fatal("expected every first request to see the restored credential")
		}
	}
	if reloaded.Len() != 1 {
		t.Errorf("expected one session, got %d", reloaded.Len())
	}
}

func TestManager_RejectsMalformedID(t *testing.T) {
	h := setup(t, time.Second)
	if _, err := h.manager.Get(context.Background(), "not-a-uuid"); !errors.Is(err, ErrInvalidSessionID) {
		t.Errorf("expected ErrInvalidSessionID, got %v", err)
	}
}

func TestManager_Evict(t *testing.T) {
	h := setup(t, time.Second)
	if h.manager.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", h.manager.Len())
	}
	if n := h.manager.Evict(0); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if h.manager.Len() != 0 {
		t.Errorf("expected no sessions, got %d", h.manager.Len())
	}
}

func TestZeroValueProductRoundTrip(t *testing.T) {
	h := setup(t, time.Second)
	h.login(t)
	ctx := context.Background()

	form := &ui.ProductForm{Name: "Sel", PurchasePrice: "0", SalePrice: "0", Quantity: "0"}
	if err := h.session.Views.SaveProduct(ctx, form); err != nil {
		t.Fatalf("save failed: %v (%v)", err, form.Errors)
	}

	products, err := h.session.Views.Products.GetAll(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]
	if p.Name != "Sel" || !p.PurchasePrice.IsZero() || !p.SalePrice.IsZero() || p.Quantity != 0 {
		t.Errorf("expected zero values preserved, got %+v", p)
	}
}

func TestSaleReducesAvailableQuantity(t *testing.T) {
	h := setup(t, time.Second)
	p := h.server.Seed(models.Product{Name: "Riz", PurchasePrice: decimal.NewFromInt(400), SalePrice: decimal.NewFromInt(500), Quantity: 5})
	h.login(t)
	ctx := context.Background()

	if err := h.session.Views.RecordMovement(ctx, ui.TabSales, &ui.MovementForm{ProductID: "1", Quantity: "2"}); err != nil {
		t.Fatalf("sale failed: %v", err)
	}

	content, err := h.session.Views.Movements(ctx, ui.TabSales, ui.Request{})
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	view := content.Data.(ui.MovementView)
	if len(view.Options) != 1 || view.Options[0].ID != p.ID || view.Options[0].Quantity != 3 {
		t.Errorf("expected product with 3 left, got %+v", view.Options)
	}
	if len(view.Rows) != 1 || !view.Rows[0].Total.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected one sale of 1000, got %+v", view.Rows)
	}
}

func TestBackendMessageShownVerbatim(t *testing.T) {
	h := setup(t, time.Second)
	h.server.Seed(models.Product{Name: "Riz", Quantity: 1})
	h.login(t)

	form := &ui.MovementForm{ProductID: "1", Quantity: "4"}
	err := h.session.Views.RecordMovement(context.Background(), ui.TabSales, form)
	var ve *backend.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if form.ServerError != "Stock insuffisant" {
		t.Errorf("expected verbatim backend text, got %q", form.ServerError)
	}
}

func TestExportDownload(t *testing.T) {
	h := setup(t, time.Second)
	h.login(t)
	h.server.ResetRequests()

	saver := &memorySaver{}
	if err := h.session.Views.Export(context.Background(), "losses", "excel", saver); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if saver.calls != 1 || saver.name != "export_losses.xlsx" {
		t.Errorf("expected one save of export_losses.xlsx, got %d %q", saver.calls, saver.name)
	}
	if saver.body != string(backendtest.ExportPayload("losses", "excel")) {
		t.Errorf("unexpected payload %q", saver.body)
	}
	reqs := h.server.Requests()
	if len(reqs) != 1 || reqs[0].Query != "data_type=losses&file_format=excel" {
		t.Errorf("expected one export request, got %+v", reqs)
	}
}
