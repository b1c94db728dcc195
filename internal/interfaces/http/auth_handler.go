package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/internal/infrastructure/metrics"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

// authService contrato que el handler necesita de *auth.AuthUseCase.
type authService interface {
	Login(ctx context.Context, username, password string) (*auth.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandler maneja login, logout y consulta de sesión.
type AuthHandler struct {
	uc      authService
	cookie  SessionCookie
	metrics *metrics.Metrics
	errs    errorMapper
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc authService, cookie SessionCookie, m *metrics.Metrics, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, cookie: cookie, metrics: m, errs: newErrorMapper(log)}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := bindJSON(c, &in); err != nil {
		h.metrics.ObserveLogin("invalid_credentials")
		return h.errs.write(c, domain.ErrInvalidCredentials)
	}
	out, err := h.uc.Login(c.UserContext(), in.Username, in.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			h.metrics.ObserveLogin("invalid_credentials")
		default:
			h.metrics.ObserveLogin("error")
		}
		return h.errs.write(c, err)
	}
	if err := h.cookie.Issue(c, out.SessionID, out.User.ID, out.ExpiresAt); err != nil {
		h.metrics.ObserveLogin("error")
		return h.errs.write(c, err)
	}
	h.metrics.ObserveLogin("success")
	return c.JSON(dto.LoginResponse{
		Success:    true,
		User:       userResponse(out.User),
		RedirectTo: out.RedirectTo,
	})
}

// Logout godoc
// @Summary      Cerrar sesión
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.SuccessResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := h.cookie.Read(c)
	h.cookie.Clear(c)
	if err := h.uc.Logout(c.UserContext(), sid); err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Check godoc
// @Summary      Estado de la sesión actual
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.AuthCheckResponse
// @Router       /api/auth/check [get]
func (h *AuthHandler) Check(c *fiber.Ctx) error {
	identity := GetIdentity(c)
	if identity == nil {
		return c.JSON(dto.AuthCheckResponse{Success: true, IsAuthenticated: false})
	}
	user := identityResponse(identity)
	return c.JSON(dto.AuthCheckResponse{Success: true, IsAuthenticated: true, User: &user})
}

// Permissions godoc
// @Summary      Permisos del rol de la sesión
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.PermissionsResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/permissions [get]
func (h *AuthHandler) Permissions(c *fiber.Ctx) error {
	identity := GetIdentity(c)
	if identity == nil {
		return h.errs.write(c, domain.ErrUnauthenticated)
	}
	return c.JSON(dto.PermissionsResponse{Success: true, Permissions: auth.PermissionNames(identity.Role)})
}

func userResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		Department:  u.Department,
		DisplayName: u.DisplayName,
	}
}

func identityResponse(i *entity.Identity) dto.UserResponse {
	return dto.UserResponse{
		ID:          i.UserID,
		Username:    i.Username,
		Role:        i.Role,
		Department:  i.Department,
		DisplayName: i.DisplayName,
	}
}
