package dto

// LoginRequest body de POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}

// UserResponse perfil público del usuario (sin credenciales).
type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	Department  string `json:"department,omitempty"`
	DisplayName string `json:"displayName"`
}

// LoginResponse respuesta de login. La sesión viaja en la cookie, no en el cuerpo.
type LoginResponse struct {
	Success    bool         `json:"success"`
	User       UserResponse `json:"user"`
	RedirectTo string       `json:"redirectTo"`
}

// AuthCheckResponse respuesta de GET /api/auth/check.
type AuthCheckResponse struct {
	Success         bool          `json:"success"`
	IsAuthenticated bool          `json:"isAuthenticated"`
	User            *UserResponse `json:"user"`
}

// PermissionsResponse respuesta de GET /api/auth/permissions.
type PermissionsResponse struct {
	Success     bool     `json:"success"`
	Permissions []string `json:"permissions"`
}

// ChangeRoleRequest body de PUT /api/admin/users/:id/role.
type ChangeRoleRequest struct {
	Role       string `json:"role" validate:"required,oneof=admin manager cashier department_uniform department_stationery"`
	Department string `json:"department" validate:"required_if=Role cashier,required_if=Role manager,omitempty,oneof=Uniform Stationery"`
}
