package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

type roleChanger interface {
	ChangeRole(ctx context.Context, actor *entity.Identity, userID, role, department string) (*entity.User, error)
}

// AdminHandler administración de usuarios.
type AdminHandler struct {
	uc   roleChanger
	errs errorMapper
}

// NewAdminHandler construye el handler de administración.
func NewAdminHandler(uc roleChanger, log *logger.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, errs: newErrorMapper(log)}
}

// ChangeRole godoc
// @Summary      Cambiar rol de un usuario (revoca sus sesiones)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "User ID"
// @Param        body  body  dto.ChangeRoleRequest  true  "role, department"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/admin/users/{id}/role [put]
func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	var in dto.ChangeRoleRequest
	if err := bindJSON(c, &in); err != nil {
		return h.errs.write(c, err)
	}
	user, err := h.uc.ChangeRole(c.UserContext(), GetIdentity(c), c.Params("id"), in.Role, in.Department)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(userResponse(user))
}
