package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/internal/domain/repository"
	"github.com/steadymonitor/pos-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// sessionIDBytes entropía del identificador de sesión (256 bits).
const sessionIDBytes = 32

// SessionConfig parámetros de vida de la sesión.
// Con Sliding=false la expiración es fija desde el login; con Sliding=true cada request la extiende TTL.
type SessionConfig struct {
	TTL     time.Duration
	Sliding bool
	// Now reloj inyectable (tests). Nil usa time.Now.
	Now func() time.Time
}

// LoginResult resultado de un login exitoso.
type LoginResult struct {
	User       *entity.User
	SessionID  string
	ExpiresAt  time.Time
	RedirectTo string
}

// AuthUseCase casos de uso de autenticación: login, logout, resolución de sesión y revocación.
type AuthUseCase struct {
	userRepo repository.UserRepository
	sessions repository.SessionStore
	cfg      SessionConfig
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, sessions repository.SessionStore, cfg SessionConfig, log *logger.Logger) *AuthUseCase {
	if cfg.TTL <= 0 {
		cfg.TTL = 8 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{userRepo: userRepo, sessions: sessions, cfg: cfg, log: log.Component("auth")}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// equalizeTiming ejecuta una comparación bcrypt contra un hash fijo para que un usuario
// inexistente tarde lo mismo que una contraseña incorrecta.
func equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("steadymonitor-timing"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Login verifica usuario/contraseña y crea una sesión nueva.
// Usuario inexistente, contraseña incorrecta y usuario inactivo devuelven el mismo ErrInvalidCredentials;
// el motivo real solo queda en el log.
func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if user == nil {
		equalizeTiming(password)
		uc.log.Warn().Str("username", username).Str("reason", "unknown_user").Msg("login rechazado")
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.log.Warn().Str("username", username).Str("user_id", user.ID).Str("reason", "bad_password").Msg("login rechazado")
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		uc.log.Warn().Str("user_id", user.ID).Str("reason", "inactive").Msg("login rechazado")
		return nil, domain.ErrInvalidCredentials
	}

	sid, err := newSessionID()
	if err != nil {
		return nil, err
	}
	now := uc.cfg.Now()
	department := user.Department
	if department == "" {
		department = entity.DepartmentForRole(user.Role)
	}
	session := &entity.Session{
		ID:          sid,
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		Department:  department,
		DisplayName: user.DisplayName,
		CreatedAt:   now,
		LastSeenAt:  now,
		ExpiresAt:   now.Add(uc.cfg.TTL),
	}
	if err := uc.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("crear sesión: %w", err)
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("login exitoso")

	profile := *user
	profile.Department = department
	return &LoginResult{
		User:       &profile,
		SessionID:  sid,
		ExpiresAt:  session.ExpiresAt,
		RedirectTo: GetRedirectPath(user.Role),
	}, nil
}

// Logout destruye la sesión. Una sesión inexistente también es éxito.
func (uc *AuthUseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("eliminar sesión: %w", err)
	}
	return nil
}

// Resolve traduce un id de sesión a la identidad del request.
// Devuelve (nil, nil) si la sesión no existe o expiró. Rol y departamento salen de la sesión,
// no del almacén de usuarios: un cambio de rol aplica en el siguiente login o tras RevokeUserSessions.
func (uc *AuthUseCase) Resolve(ctx context.Context, sessionID string) (*entity.Identity, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("leer sesión: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	now := uc.cfg.Now()
	if session.Expired(now) {
		if err := uc.sessions.Delete(ctx, sessionID); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo eliminar sesión expirada")
		}
		return nil, nil
	}
	if uc.cfg.Sliding {
		expiresAt := now.Add(uc.cfg.TTL)
		if err := uc.sessions.Touch(ctx, sessionID, now, expiresAt); err != nil {
			return nil, fmt.Errorf("extender sesión: %w", err)
		}
		session.LastSeenAt = now
		session.ExpiresAt = expiresAt
	}
	return entity.IdentityFromSession(session), nil
}

// Sliding informa si la sesión se extiende con cada request (la cookie debe renovarse).
func (uc *AuthUseCase) Sliding() bool { return uc.cfg.Sliding }

// GetUserPermissions permisos del rol según la matriz.
func (uc *AuthUseCase) GetUserPermissions(role string) []Permission {
	return GetUserPermissions(role)
}

// GetRedirectPath ruta de aterrizaje del rol.
func (uc *AuthUseCase) GetRedirectPath(role string) string {
	return GetRedirectPath(role)
}

// RevokeUserSessions elimina todas las sesiones del usuario.
func (uc *AuthUseCase) RevokeUserSessions(ctx context.Context, userID string) error {
	if err := uc.sessions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("revocar sesiones: %w", err)
	}
	return nil
}

// ChangeRole actualiza rol y departamento y revoca las sesiones abiertas del usuario,
// cerrando la ventana en que la sesión conserva el rol anterior.
func (uc *AuthUseCase) ChangeRole(ctx context.Context, actor *entity.Identity, userID, role, department string) (*entity.User, error) {
	if err := Authorize(actor, PermAdmin, ""); err != nil {
		return nil, err
	}
	if _, known := permissionMatrix[role]; !known {
		return nil, domain.ErrInvalidInput
	}
	department, err := departmentFor(role, department)
	if err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.userRepo.UpdateRole(ctx, userID, role, department); err != nil {
		return nil, err
	}
	if err := uc.RevokeUserSessions(ctx, userID); err != nil {
		return nil, err
	}
	uc.log.Info().Str("actor", actor.UserID).Str("user_id", userID).Str("role", role).Msg("rol actualizado, sesiones revocadas")
	user.Role = role
	user.Department = department
	return user, nil
}

// CreateUser da de alta un usuario con la contraseña hasheada (usado por la CLI de administración).
func (uc *AuthUseCase) CreateUser(ctx context.Context, username, password, role, department, displayName string) (*entity.User, error) {
	if username == "" || len(password) < 8 {
		return nil, domain.ErrInvalidInput
	}
	if _, known := permissionMatrix[role]; !known {
		return nil, domain.ErrInvalidInput
	}
	department, err := departmentFor(role, department)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if displayName == "" {
		displayName = username
	}
	now := uc.cfg.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Department:   department,
		DisplayName:  displayName,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// departmentFor devuelve el departamento a guardar para el rol: el implícito de los roles
// department_* o el indicado. cashier y manager no pueden quedar sin departamento.
func departmentFor(role, department string) (string, error) {
	if implied := entity.DepartmentForRole(role); implied != "" {
		return implied, nil
	}
	if department == "" && entity.RoleNeedsDepartment(role) {
		return "", fmt.Errorf("el rol %s exige departamento: %w", role, domain.ErrInvalidInput)
	}
	if department != "" && !entity.ValidDepartment(department) {
		return "", fmt.Errorf("departamento desconocido %q: %w", department, domain.ErrInvalidInput)
	}
	return department, nil
}

func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generar id de sesión: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
