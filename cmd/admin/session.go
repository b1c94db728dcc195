package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/steadymonitor/pos-api/internal/infrastructure/postgres"
	"github.com/steadymonitor/pos-api/pkg/config"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Mantenimiento del almacén de sesiones",
}

var sessionPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Borra las sesiones vencidas (solo SESSION_STORE=postgres; Redis las expira por TTL)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if e.cfg.Session.Store != config.SessionStorePostgres {
			fmt.Fprintln(cmd.OutOrStdout(), "el almacén redis expira las sesiones solo; nada que purgar")
			return nil
		}
		n, err := postgres.NewSessionRepository(e.pool).PurgeExpired(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d sesiones vencidas eliminadas\n", n)
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionPurgeCmd)
}
