package entity

import "time"

// Roles válidos para User. Los roles department_* implican su departamento.
const (
	RoleAdmin                = "admin"
	RoleManager              = "manager"
	RoleCashier              = "cashier"
	RoleDepartmentUniform    = "department_uniform"
	RoleDepartmentStationery = "department_stationery"
)

// Departamentos conocidos.
const (
	DepartmentUniform    = "Uniform"
	DepartmentStationery = "Stationery"
)

// User representa un usuario del sistema (cajero, encargado de departamento o administrador).
type User struct {
	ID           string
	Username     string // único, comparación exacta (sensible a mayúsculas)
	PasswordHash string // bcrypt, nunca texto plano
	Role         string
	Department   string // vacío si el rol no está atado a un departamento
	DisplayName  string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleNeedsDepartment informa si el rol opera el POS de un departamento sin tenerlo implícito.
func RoleNeedsDepartment(role string) bool {
	return role == RoleCashier || role == RoleManager
}

// ValidDepartment informa si el departamento es uno de los conocidos.
func ValidDepartment(department string) bool {
	return department == DepartmentUniform || department == DepartmentStationery
}

// DepartmentForRole devuelve el departamento implícito de un rol department_*.
func DepartmentForRole(role string) string {
	switch role {
	case RoleDepartmentUniform:
		return DepartmentUniform
	case RoleDepartmentStationery:
		return DepartmentStationery
	default:
		return ""
	}
}
