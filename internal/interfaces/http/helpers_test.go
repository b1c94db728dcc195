package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/application/pos"
	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	apphttp "github.com/steadymonitor/pos-api/internal/interfaces/http"
	pkgjwt "github.com/steadymonitor/pos-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testSecret = "test-secret-key-for-unit-tests-0123456789"
	testIssuer = "steadymonitor-test"
)

var testCookie = apphttp.SessionCookie{Name: "sid", Secret: testSecret, Issuer: testIssuer}

var (
	alice = &entity.Identity{
		SessionID: "sid-alice", UserID: "u-alice", Username: "alice",
		Role: entity.RoleDepartmentUniform, Department: entity.DepartmentUniform, DisplayName: "Alice",
	}
	root = &entity.Identity{
		SessionID: "sid-root", UserID: "u-root", Username: "root",
		Role: entity.RoleAdmin, DisplayName: "Root",
	}
	carol = &entity.Identity{
		SessionID: "sid-carol", UserID: "u-carol", Username: "carol",
		Role: entity.RoleCashier, Department: entity.DepartmentUniform, DisplayName: "Carol",
	}
)

// fakeAuth sesiones en memoria indexadas por id.
type fakeAuth struct {
	mu         sync.Mutex
	sessions   map[string]*entity.Identity
	passwords  map[string]string
	sliding    bool
	resolveErr error
}

func newFakeAuth(identities ...*entity.Identity) *fakeAuth {
	f := &fakeAuth{sessions: map[string]*entity.Identity{}, passwords: map[string]string{}}
	for _, id := range identities {
		cp := *id
		cp.ExpiresAt = time.Now().Add(time.Hour)
		f.sessions[id.SessionID] = &cp
		f.passwords[id.Username] = "correct"
	}
	return f
}

func (f *fakeAuth) Login(_ context.Context, username, password string) (*auth.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.passwords[username]; !ok || pw != password {
		return nil, domain.ErrInvalidCredentials
	}
	for _, id := range f.sessions {
		if id.Username == username {
			return &auth.LoginResult{
				User:       &entity.User{ID: id.UserID, Username: id.Username, Role: id.Role, Department: id.Department, DisplayName: id.DisplayName},
				SessionID:  id.SessionID,
				ExpiresAt:  id.ExpiresAt,
				RedirectTo: auth.GetRedirectPath(id.Role),
			}, nil
		}
	}
	return nil, domain.ErrInvalidCredentials
}

func (f *fakeAuth) Logout(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeAuth) Resolve(_ context.Context, sessionID string) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.sessions[sessionID], nil
}

func (f *fakeAuth) Sliding() bool { return f.sliding }

func (f *fakeAuth) ChangeRole(_ context.Context, actor *entity.Identity, userID, role, department string) (*entity.User, error) {
	if err := auth.Authorize(actor, auth.PermAdmin, ""); err != nil {
		return nil, err
	}
	if userID == "missing" {
		return nil, domain.ErrNotFound
	}
	return &entity.User{ID: userID, Username: "bob", Role: role, Department: department, DisplayName: "Bob"}, nil
}

// fakeCheckout devuelve lo que indique fn y guarda la última entrada.
type fakeCheckout struct {
	mu   sync.Mutex
	last pos.CheckoutInput
	fn   func(identity *entity.Identity, in pos.CheckoutInput) (*dto.CheckoutResponse, error)
}

func (f *fakeCheckout) Checkout(_ context.Context, identity *entity.Identity, in pos.CheckoutInput) (*dto.CheckoutResponse, error) {
	f.mu.Lock()
	f.last = in
	f.mu.Unlock()
	if err := auth.Authorize(identity, auth.PermPOS, in.Department); err != nil {
		return nil, err
	}
	return f.fn(identity, in)
}

type fakeCatalog struct{}

func (fakeCatalog) ListDepartmentProducts(_ context.Context, _ *entity.Identity, department string, _ dto.PageRequest) (*dto.ProductListResponse, error) {
	return &dto.ProductListResponse{Success: true, Items: []dto.ProductResponse{{ID: "P1", Department: department}}}, nil
}

type fakeSales struct{}

func (fakeSales) GetSale(_ context.Context, _ *entity.Identity, saleID string) (*dto.SaleResponse, error) {
	if saleID == "missing" {
		return nil, domain.ErrNotFound
	}
	return &dto.SaleResponse{Success: true, Receipt: dto.Receipt{SaleID: saleID, Status: entity.SaleStatusCompleted}}, nil
}

func (fakeSales) VoidSale(_ context.Context, _ *entity.Identity, saleID string) (*dto.SaleResponse, error) {
	return &dto.SaleResponse{Success: true, Receipt: dto.Receipt{SaleID: saleID, Status: entity.SaleStatusVoided}}, nil
}

// buildTestApp construye una aplicación Fiber con el router completo y servicios falsos.
func buildTestApp(t *testing.T, fa *fakeAuth, checkout *fakeCheckout, pagesDir string) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.FiberErrorHandler(nil)})
	deps := apphttp.RouterDeps{
		AuthUC:    fa,
		CatalogUC: fakeCatalog{},
		SaleUC:    fakeSales{},
		Cookie:    testCookie,
		PagesDir:  pagesDir,
	}
	if checkout != nil {
		deps.CheckoutUC = checkout
	}
	apphttp.Router(app, deps)
	return app
}

// cookieFor firma un token de sesión como lo haría el login.
func cookieFor(t *testing.T, identity *entity.Identity) string {
	t.Helper()
	tok, err := pkgjwt.SignSession(testSecret, identity.SessionID, identity.UserID, testIssuer, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return "sid=" + tok
}

// doRequest lanza una petición y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, method, path, body, cookie string, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
