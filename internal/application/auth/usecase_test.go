package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[string]*entity.User
	fails error
}

func newFakeUsers(users ...*entity.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*entity.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Username == u.Username {
			return domain.ErrDuplicate
		}
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails != nil {
		return nil, f.fails
	}
	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, id, role, department string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	u.Department = department
	return nil
}

type fakeSessions struct {
	mu      sync.Mutex
	byID    map[string]entity.Session
	touches int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[string]entity.Session{}}
}

func (f *fakeSessions) Create(_ context.Context, s *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[s.ID] = *s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
	return nil
}

func (f *fakeSessions) Touch(_ context.Context, id string, lastSeen, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byID[id]
	if !ok {
		return nil
	}
	s.LastSeenAt = lastSeen
	s.ExpiresAt = expiresAt
	f.byID[id] = s
	f.touches++
	return nil
}

func (f *fakeSessions) DeleteByUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.byID {
		if s.UserID == userID {
			delete(f.byID, id)
		}
	}
	return nil
}

// clock reloj manual para probar expiración.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time            { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func alice(t *testing.T) *entity.User {
	return &entity.User{
		ID:           "user-alice",
		Username:     "alice",
		PasswordHash: hashFor(t, "correct"),
		Role:         entity.RoleDepartmentUniform,
		Department:   entity.DepartmentUniform,
		DisplayName:  "Alice",
		Active:       true,
	}
}

func newUseCase(users *fakeUsers, sessions *fakeSessions, clk *clock, sliding bool) *auth.AuthUseCase {
	return auth.NewAuthUseCase(users, sessions, auth.SessionConfig{
		TTL:     time.Hour,
		Sliding: sliding,
		Now:     clk.Now,
	}, nil)
}

// ──────────────────────────────────────────────────────────────────────────────
// Login / Resolve / Logout
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_AliceDepartamentoUniform(t *testing.T) {
	clk := &clock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	uc := newUseCase(newFakeUsers(alice(t)), newFakeSessions(), clk, false)

	res, err := uc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleDepartmentUniform, res.User.Role)
	assert.Equal(t, entity.DepartmentUniform, res.User.Department)
	assert.Equal(t, "/department", res.RedirectTo)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, clk.now.Add(time.Hour), res.ExpiresAt)
}

func TestLogin_SesionResuelveMismoUsuarioYRol(t *testing.T) {
	clk := &clock{now: time.Now()}
	uc := newUseCase(newFakeUsers(alice(t)), newFakeSessions(), clk, false)

	res, err := uc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	identity, err := uc.Resolve(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "user-alice", identity.UserID)
	assert.Equal(t, entity.RoleDepartmentUniform, identity.Role)
	assert.Equal(t, entity.DepartmentUniform, identity.Department)
	assert.Equal(t, res.SessionID, identity.SessionID)
}

func TestLogin_IdsDeSesionDistintos(t *testing.T) {
	clk := &clock{now: time.Now()}
	uc := newUseCase(newFakeUsers(alice(t)), newFakeSessions(), clk, false)

	a, err := uc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	b, err := uc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	assert.NotEqual(t, a.SessionID, b.SessionID)
	assert.GreaterOrEqual(t, len(a.SessionID), 43, "256 bits en base64url")
}

func TestLogin_CredencialesInvalidasNoDistingue(t *testing.T) {
	uc := newUseCase(newFakeUsers(alice(t)), newFakeSessions(), &clock{now: time.Now()}, false)

	_, errWrong := uc.Login(context.Background(), "alice", "incorrect")
	_, errUnknown := uc.Login(context.Background(), "bob", "correct")
	_, errCase := uc.Login(context.Background(), "Alice", "correct")

	assert.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errCase, domain.ErrInvalidCredentials, "el usuario se compara exacto")
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	u := alice(t)
	u.Active = false
	uc := newUseCase(newFakeUsers(u), newFakeSessions(), &clock{now: time.Now()}, false)

	_, err := uc.Login(context.Background(), "alice", "correct")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "mismo error que una contraseña incorrecta")
	assert.False(t, errors.Is(err, domain.ErrForbidden))
}

func TestLogin_ErrorDeInfraestructura(t *testing.T) {
	users := newFakeUsers()
	users.fails = errors.New("conexión rechazada")
	uc := newUseCase(users, newFakeSessions(), &clock{now: time.Now()}, false)

	_, err := uc.Login(context.Background(), "alice", "correct")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_DepartamentoImplicitoPorRol(t *testing.T) {
	u := alice(t)
	u.Department = ""
	u.Role = entity.RoleDepartmentStationery
	uc := newUseCase(newFakeUsers(u), newFakeSessions(), &clock{now: time.Now()}, false)

	res, err := uc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	assert.Equal(t, entity.DepartmentStationery, res.User.Department)
}

func TestResolve_SesionExpiradaEsNinguna(t *testing.T) {
	clk := &clock{now: time.Now()}
	sessions := newFakeSessions()
	uc := newUseCase(newFakeUsers(alice(t)), sessions, clk, false)

	res, err := uc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	clk.Advance(time.Hour)
	identity, err := uc.Resolve(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Nil(t, identity, "una sesión en su instante de expiración ya no es válida")

	s, _ := sessions.Get(context.Background(), res.SessionID)
	assert.Nil(t, s, "la sesión expirada se elimina")
}

func TestResolve_ExpiracionFijaNoSeExtiende(t *testing.T) {
	clk := &clock{now: time.Now()}
	sessions := newFakeSessions()
	uc := newUseCase(newFakeUsers(alice(t)), sessions, clk, false)

	res, err := uc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	clk.Advance(50 * time.Minute)
	identity, err := uc.Resolve(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, 0, sessions.touches)

	clk.Advance(20 * time.Minute)
	identity, err = uc.Resolve(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestResolve_ExpiracionDeslizante(t *testing.T) {
	clk := &clock{now: time.Now()}
	sessions := newFakeSessions()
	uc := newUseCase(newFakeUsers(alice(t)), sessions, clk, true)

	res, err := uc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	clk.Advance(50 * time.Minute)
	identity, err := uc.Resolve(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, clk.now.Add(time.Hour), identity.ExpiresAt)

	clk.Advance(50 * time.Minute)
	identity, err = uc.Resolve(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.NotNil(t, identity, "la actividad extendió la sesión")
	assert.Equal(t, 2, sessions.touches)
}

func TestResolve_IdVacioODesconocido(t *testing.T) {
	uc := newUseCase(newFakeUsers(), newFakeSessions(), &clock{now: time.Now()}, false)

	identity, err := uc.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, identity)

	identity, err = uc.Resolve(context.Background(), "no-existe")
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestLogout_InvalidaSesionYEsIdempotente(t *testing.T) {
	uc := newUseCase(newFakeUsers(alice(t)), newFakeSessions(), &clock{now: time.Now()}, false)

	res, err := uc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	require.NoError(t, uc.Logout(context.Background(), res.SessionID))
	identity, err := uc.Resolve(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Nil(t, identity)

	assert.NoError(t, uc.Logout(context.Background(), res.SessionID), "segundo logout también es éxito")
	assert.NoError(t, uc.Logout(context.Background(), "nunca-existio"))
	assert.NoError(t, uc.Logout(context.Background(), ""))
}

// ──────────────────────────────────────────────────────────────────────────────
// ChangeRole / CreateUser
// ──────────────────────────────────────────────────────────────────────────────

func TestChangeRole_RevocaSesiones(t *testing.T) {
	users := newFakeUsers(alice(t))
	sessions := newFakeSessions()
	uc := newUseCase(users, sessions, &clock{now: time.Now()}, false)
	admin := &entity.Identity{UserID: "admin-1", Role: entity.RoleAdmin}

	res, err := uc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	user, err := uc.ChangeRole(context.Background(), admin, "user-alice", entity.RoleDepartmentStationery, "")
	require.NoError(t, err)
	assert.Equal(t, entity.DepartmentStationery, user.Department, "departamento implícito del rol")

	identity, err := uc.Resolve(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Nil(t, identity, "la sesión con el rol anterior queda revocada")
}

func TestChangeRole_SoloAdmin(t *testing.T) {
	uc := newUseCase(newFakeUsers(alice(t)), newFakeSessions(), &clock{now: time.Now()}, false)
	manager := &entity.Identity{UserID: "m1", Role: entity.RoleManager}

	_, err := uc.ChangeRole(context.Background(), manager, "user-alice", entity.RoleAdmin, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestChangeRole_RolDesconocidoYUsuarioInexistente(t *testing.T) {
	uc := newUseCase(newFakeUsers(alice(t)), newFakeSessions(), &clock{now: time.Now()}, false)
	admin := &entity.Identity{UserID: "admin-1", Role: entity.RoleAdmin}

	_, err := uc.ChangeRole(context.Background(), admin, "user-alice", "superuser", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ChangeRole(context.Background(), admin, "nadie", entity.RoleCashier, entity.DepartmentUniform)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangeRole_CajeroYEncargadoExigenDepartamento(t *testing.T) {
	users := newFakeUsers(alice(t))
	uc := newUseCase(users, newFakeSessions(), &clock{now: time.Now()}, false)
	admin := &entity.Identity{UserID: "admin-1", Role: entity.RoleAdmin}

	for _, role := range []string{entity.RoleCashier, entity.RoleManager} {
		_, err := uc.ChangeRole(context.Background(), admin, "user-alice", role, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput, role)
	}
	_, err := uc.ChangeRole(context.Background(), admin, "user-alice", entity.RoleCashier, "Cafeteria")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stored, err := users.GetByID(context.Background(), "user-alice")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleDepartmentUniform, stored.Role, "un rol rechazado no se guarda")

	user, err := uc.ChangeRole(context.Background(), admin, "user-alice", entity.RoleManager, entity.DepartmentStationery)
	require.NoError(t, err)
	assert.Equal(t, entity.DepartmentStationery, user.Department)
}

func TestCreateUser_HasheaYPermiteLogin(t *testing.T) {
	users := newFakeUsers()
	uc := newUseCase(users, newFakeSessions(), &clock{now: time.Now()}, false)

	user, err := uc.CreateUser(context.Background(), "carol", "s3cret-pass", entity.RoleCashier, entity.DepartmentUniform, "")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.Equal(t, "carol", user.DisplayName)

	res, err := uc.Login(context.Background(), "carol", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "/pos", res.RedirectTo)

	_, err = uc.CreateUser(context.Background(), "carol", "otra-clave-1", entity.RoleCashier, entity.DepartmentUniform, "")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.CreateUser(context.Background(), "dave", "corta", entity.RoleCashier, entity.DepartmentUniform, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateUser_CajeroSinDepartamentoRechazado(t *testing.T) {
	users := newFakeUsers()
	uc := newUseCase(users, newFakeSessions(), &clock{now: time.Now()}, false)

	_, err := uc.CreateUser(context.Background(), "carl", "password123", entity.RoleCashier, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateUser(context.Background(), "mona", "password123", entity.RoleManager, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, users.byID, "no se crea ninguna cuenta")

	// Con departamento, el cajero puede vender en él.
	user, err := uc.CreateUser(context.Background(), "carl", "password123", entity.RoleCashier, entity.DepartmentUniform, "")
	require.NoError(t, err)
	res, err := uc.Login(context.Background(), "carl", "password123")
	require.NoError(t, err)
	identity, err := uc.Resolve(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, user.Department, identity.Department)
	assert.NoError(t, auth.Authorize(identity, auth.PermPOS, entity.DepartmentUniform))

	// admin no necesita departamento
	_, err = uc.CreateUser(context.Background(), "root", "password123", entity.RoleAdmin, "", "")
	assert.NoError(t, err)
}
