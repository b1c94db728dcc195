package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/application/customer"
	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/application/inventory"
	"github.com/steadymonitor/pos-api/internal/application/pos"
	"github.com/steadymonitor/pos-api/internal/domain/repository"
	"github.com/steadymonitor/pos-api/internal/infrastructure/metrics"
	"github.com/steadymonitor/pos-api/internal/infrastructure/postgres"
	redisstore "github.com/steadymonitor/pos-api/internal/infrastructure/redis"
	httpRouter "github.com/steadymonitor/pos-api/internal/interfaces/http"
	"github.com/steadymonitor/pos-api/pkg/config"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("session_store", cfg.Session.Store).
		Msg("iniciando aplicación")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	if cfg.Session.Secret == "" {
		// solo development llega aquí: las cookies no sobreviven a un reinicio
		cfg.Session.Secret = randomSecret()
		log.Warn().Msg("SESSION_SECRET vacío, se generó uno aleatorio para esta ejecución")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var sessions repository.SessionStore
	switch cfg.Session.Store {
	case config.SessionStorePostgres:
		sessions = postgres.NewSessionRepository(pool)
	default:
		client, err := redisstore.NewClient(ctx, cfg.Redis, cfg.App)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		sessions = redisstore.NewSessionStore(client)
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	receipts := pos.NewReceiptFormatter(cfg.Receipt.Locale)

	authUC := auth.NewAuthUseCase(userRepo, sessions, auth.SessionConfig{
		TTL:     cfg.Session.TTL(),
		Sliding: cfg.Session.Sliding,
	}, log)
	checkoutUC := pos.NewCheckoutUseCase(txRunner, saleRepo, customerRepo, receipts, log)
	catalogUC := pos.NewCatalogUseCase(productRepo)
	saleUC := pos.NewSaleUseCase(txRunner, saleRepo, customerRepo, receipts, log)
	paymentUC := pos.NewPaymentUseCase(txRunner, log)
	productUC := inventory.NewProductUseCase(productRepo, log)
	customerUC := customer.NewUseCase(customerRepo, paymentRepo)

	m := metrics.New()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.FiberErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log, m))
	app.Use(httpRouter.RequestTimeout(cfg.HTTP.RequestTimeout()))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "SteadyMonitor POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	loginLimiter := limiter.New(limiter.Config{
		Max:        cfg.HTTP.LoginRateLimit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			m.ObserveLogin("rate_limited")
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "TooManyRequests",
				Message: "demasiados intentos, espere un minuto",
			})
		},
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		CheckoutUC: checkoutUC,
		CatalogUC:  catalogUC,
		SaleUC:     saleUC,
		PaymentUC:  paymentUC,
		ProductUC:  productUC,
		CustomerUC: customerUC,
		Cookie: httpRouter.SessionCookie{
			Name:     cfg.Session.CookieName,
			Secret:   cfg.Session.Secret,
			Issuer:   cfg.App.Name,
			Secure:   cfg.Session.CookieSecure || !cfg.App.IsDevelopment(),
			SameSite: cfg.Session.SameSite,
		},
		Metrics:      m,
		Logger:       log,
		PagesDir:     cfg.HTTP.PagesDir,
		LoginLimiter: loginLimiter,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("generar secreto de sesión: " + err.Error())
	}
	return hex.EncodeToString(b)
}
