// admin es la CLI de mantenimiento: migraciones, alta de usuarios y revocación de sesiones.
//
// Uso:
//
//	go run ./cmd/admin migrate up
//	go run ./cmd/admin user create --username alice --role department_uniform
//	go run ./cmd/admin user revoke-sessions <user-id>
//	go run ./cmd/admin session purge
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/domain/repository"
	"github.com/steadymonitor/pos-api/internal/infrastructure/postgres"
	redisstore "github.com/steadymonitor/pos-api/internal/infrastructure/redis"
	"github.com/steadymonitor/pos-api/pkg/config"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "SteadyMonitor POS administration",
	Long:          `Migraciones de base de datos y administración de usuarios y sesiones.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(migrateCmd, userCmd, sessionCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env recursos compartidos por los subcomandos.
type env struct {
	cfg      *config.Config
	log      *logger.Logger
	pool     *pgxpool.Pool
	sessions repository.SessionStore
	authUC   *auth.AuthUseCase
	closers  []func()
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: cfg.App.Name + "-admin", Out: os.Stderr})
	return cfg, log, nil
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	e.pool = pool
	e.closers = append(e.closers, pool.Close)

	switch cfg.Session.Store {
	case config.SessionStorePostgres:
		e.sessions = postgres.NewSessionRepository(pool)
	default:
		client, err := redisstore.NewClient(ctx, cfg.Redis, cfg.App)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.closers = append(e.closers, func() { _ = client.Close() })
		e.sessions = redisstore.NewSessionStore(client)
	}

	e.authUC = auth.NewAuthUseCase(postgres.NewUserRepository(pool), e.sessions, auth.SessionConfig{
		TTL:     cfg.Session.TTL(),
		Sliding: cfg.Session.Sliding,
	}, log)
	return e, nil
}
