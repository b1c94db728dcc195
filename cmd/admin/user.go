package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	userCmd = &cobra.Command{
		Use:   "user",
		Short: "Administración de usuarios",
	}

	userCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Crea un usuario con contraseña bcrypt",
		Long:  `La contraseña se toma de --password o, si falta, de la variable ADMIN_USER_PASSWORD.`,
		RunE:  runUserCreate,
	}

	userRevokeCmd = &cobra.Command{
		Use:   "revoke-sessions <user-id>",
		Short: "Cierra todas las sesiones abiertas de un usuario",
		Args:  cobra.ExactArgs(1),
		RunE:  runUserRevoke,
	}

	newUsername    string
	newPassword    string
	newRole        string
	newDepartment  string
	newDisplayName string
)

func init() {
	userCreateCmd.Flags().StringVar(&newUsername, "username", "", "nombre de usuario (exacto, sensible a mayúsculas)")
	userCreateCmd.Flags().StringVar(&newPassword, "password", "", "contraseña (mínimo 8 caracteres)")
	userCreateCmd.Flags().StringVar(&newRole, "role", "cashier", "admin | manager | cashier | department_uniform | department_stationery")
	userCreateCmd.Flags().StringVar(&newDepartment, "department", "", "departamento Uniform | Stationery (obligatorio para cashier y manager; implícito en department_*)")
	userCreateCmd.Flags().StringVar(&newDisplayName, "display-name", "", "nombre visible")
	_ = userCreateCmd.MarkFlagRequired("username")

	userCmd.AddCommand(userCreateCmd, userRevokeCmd)
}

func runUserCreate(cmd *cobra.Command, _ []string) error {
	password := newPassword
	if password == "" {
		password = os.Getenv("ADMIN_USER_PASSWORD")
	}
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.authUC.CreateUser(cmd.Context(), newUsername, password, newRole, newDepartment, newDisplayName)
	if err != nil {
		return fmt.Errorf("crear usuario: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "usuario %s creado (id %s, rol %s, departamento %q)\n",
		user.Username, user.ID, user.Role, user.Department)
	return nil
}

func runUserRevoke(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.authUC.RevokeUserSessions(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sesiones de %s revocadas\n", args[0])
	return nil
}
