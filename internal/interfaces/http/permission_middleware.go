package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/domain"
)

// ScopeFunc extrae del request el departamento contra el que se autoriza.
type ScopeFunc func(c *fiber.Ctx) string

// DepartmentFromParam toma el departamento de un parámetro de ruta (/products/:department).
func DepartmentFromParam(name string) ScopeFunc {
	return func(c *fiber.Ctx) string { return c.Params(name) }
}

// DepartmentFromQuery toma el departamento de la query string.
func DepartmentFromQuery(name string) ScopeFunc {
	return func(c *fiber.Ctx) string { return c.Query(name) }
}

// RequirePermission exige que el rol de la sesión tenga el permiso. Debe usarse DESPUÉS de
// RequireAPI. Se evalúa en cada request, sin caché.
func RequirePermission(perm auth.Permission) fiber.Handler {
	return RequireDepartmentPermission(perm, nil)
}

// RequireDepartmentPermission como RequirePermission y además, si scope devuelve un departamento,
// exige que coincida con el de la sesión (admin lo omite).
func RequireDepartmentPermission(perm auth.Permission, scope ScopeFunc) fiber.Handler {
	errs := newErrorMapper(nil)
	return func(c *fiber.Ctx) error {
		identity := GetIdentity(c)
		if identity == nil {
			return errs.write(c, domain.ErrUnauthenticated)
		}
		department := ""
		if scope != nil {
			department = scope(c)
		}
		if err := auth.Authorize(identity, perm, department); err != nil {
			return errs.write(c, err)
		}
		return c.Next()
	}
}
