package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steadymonitor/pos-api/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|version]",
	Short:     "Ejecuta las migraciones SQL embebidas",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "down", "status", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		command := "up"
		if len(args) == 1 {
			command = args[0]
		}
		switch command {
		case "up", "down", "status", "version":
		default:
			return fmt.Errorf("comando de migración desconocido: %q", command)
		}
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if err := postgres.Migrate(cmd.Context(), cfg.DB.ConnectionString(), command); err != nil {
			return err
		}
		log.Info().Str("command", command).Msg("migraciones aplicadas")
		return nil
	},
}
