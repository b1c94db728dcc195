package auth

import (
	"sort"

	"github.com/steadymonitor/pos-api/internal/domain"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
)

// Permission etiqueta de capacidad que se compara contra el conjunto del rol.
type Permission string

const (
	PermPOS       Permission = "pos"
	PermInventory Permission = "inventory"
	PermCustomers Permission = "customers"
	PermReports   Permission = "reports"
	PermRefunds   Permission = "refunds"
	PermAdmin     Permission = "admin"
)

// Rutas de aterrizaje por rol.
const (
	PathAdmin      = "/admin"
	PathDepartment = "/department"
	PathPOS        = "/pos"
	PathLogin      = "/login"
)

// permissionMatrix es la única fuente de permisos por rol.
// Un rol ausente no tiene permisos: nunca hay un "permitir" implícito.
var permissionMatrix = map[string][]Permission{
	entity.RoleAdmin:                {PermAdmin, PermPOS, PermInventory, PermCustomers, PermReports, PermRefunds},
	entity.RoleManager:              {PermPOS, PermInventory, PermCustomers, PermReports, PermRefunds},
	entity.RoleCashier:              {PermPOS, PermCustomers},
	entity.RoleDepartmentUniform:    {PermPOS, PermInventory, PermCustomers},
	entity.RoleDepartmentStationery: {PermPOS, PermInventory, PermCustomers},
}

// departmentScoped permisos que además exigen coincidir con el departamento (salvo admin).
var departmentScoped = map[Permission]bool{
	PermPOS:       true,
	PermInventory: true,
}

// GetUserPermissions devuelve una copia del conjunto de permisos del rol.
// Roles desconocidos obtienen un conjunto vacío (no nil).
func GetUserPermissions(role string) []Permission {
	perms := permissionMatrix[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// PermissionNames igual que GetUserPermissions pero como strings ordenados (para respuestas JSON).
func PermissionNames(role string) []string {
	perms := permissionMatrix[role]
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}

// HasPermission informa si el rol incluye el permiso.
func HasPermission(role string, perm Permission) bool {
	for _, p := range permissionMatrix[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// IsDepartmentScoped informa si el permiso está atado a un departamento.
func IsDepartmentScoped(perm Permission) bool {
	return departmentScoped[perm]
}

// GetRedirectPath ruta de aterrizaje tras el login. Total sobre cualquier rol.
func GetRedirectPath(role string) string {
	switch role {
	case entity.RoleAdmin:
		return PathAdmin
	case entity.RoleDepartmentUniform, entity.RoleDepartmentStationery:
		return PathDepartment
	case entity.RoleManager, entity.RoleCashier:
		return PathPOS
	default:
		return PathLogin
	}
}

// Authorize comprueba permiso y, si aplica, el alcance de departamento.
// scopeDepartment vacío omite la comprobación de departamento.
func Authorize(identity *entity.Identity, perm Permission, scopeDepartment string) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}
	if !HasPermission(identity.Role, perm) {
		return domain.ErrForbidden
	}
	if scopeDepartment == "" || !IsDepartmentScoped(perm) {
		return nil
	}
	if identity.Role == entity.RoleAdmin {
		return nil
	}
	if identity.Department != scopeDepartment {
		return domain.ErrForbidden
	}
	return nil
}

// VisibleDepartment departamento por el que filtrar listados: vacío (todo) para admin o para
// usuarios sin departamento asignado.
func VisibleDepartment(identity *entity.Identity) string {
	if identity == nil || identity.Role == entity.RoleAdmin {
		return ""
	}
	return identity.Department
}

// CanSee informa si el registro de department es visible para la identidad.
// Registros sin departamento son visibles para todos.
func CanSee(identity *entity.Identity, department string) bool {
	scope := VisibleDepartment(identity)
	return department == "" || scope == "" || scope == department
}
