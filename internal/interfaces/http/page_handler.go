package http

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
)

// PageHandler sirve las páginas HTML de aterrizaje desde un directorio.
type PageHandler struct {
	dir string
}

// NewPageHandler construye el handler de páginas.
func NewPageHandler(dir string) *PageHandler {
	return &PageHandler{dir: dir}
}

// Login muestra el formulario; con sesión vigente redirige a la página del rol.
func (h *PageHandler) Login(c *fiber.Ctx) error {
	if identity := GetIdentity(c); identity != nil {
		if target := auth.GetRedirectPath(identity.Role); target != auth.PathLogin {
			return c.Redirect(target, fiber.StatusFound)
		}
	}
	return c.SendFile(filepath.Join(h.dir, "login.html"))
}

// Landing sirve file en path. Un rol cuya página es otra se redirige a la suya; admin entra a todas.
// Va después de RequirePage.
func (h *PageHandler) Landing(path, file string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := GetIdentity(c)
		if identity == nil {
			return c.Redirect(auth.PathLogin, fiber.StatusFound)
		}
		if identity.Role != entity.RoleAdmin {
			if target := auth.GetRedirectPath(identity.Role); target != path {
				return c.Redirect(target, fiber.StatusFound)
			}
		}
		return c.SendFile(filepath.Join(h.dir, file))
	}
}
