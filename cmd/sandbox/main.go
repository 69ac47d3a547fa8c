package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/sweetshop/internal/application/sandbox"
	"github.com/jhoicas/sweetshop/internal/infrastructure/memory"
	"github.com/jhoicas/sweetshop/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/sweetshop/internal/interfaces/http"
	"github.com/jhoicas/sweetshop/pkg/config"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando sandbox")

	secret := cfg.JWT.Secret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET vacío: se usa un secreto aleatorio, los tokens no sobreviven al reinicio")
	}

	ctx := context.Background()

	var store sandbox.Store = memory.NewStore()
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conectar a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
		store = postgres.NewStore(pool)
		log.Info().Msg("sandbox persistente en PostgreSQL")
	}

	authUC := sandbox.NewAuthUseCase(store, store, sandbox.AuthOptions{
		JWT: sandbox.JWTConfig{
			Secret:     secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
		ExposeResetToken: cfg.Sandbox.ExposeResetToken && cfg.App.Env != "production",
	})
	sweetUC := sandbox.NewSweetUseCase(store, store, store, nil)

	if cfg.Sandbox.Seed {
		if err := seedOnce(ctx, store, authUC, sweetUC, log); err != nil {
			log.Fatal().Err(err).Msg("precarga del sandbox")
		}
	}

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:      cfg.App.Name,
		JWTSecret: secret,
		RateLimit: cfg.Sandbox.RateLimit,
		AuthUC:    authUC,
		SweetUC:   sweetUC,
		Logger:    log,
	})

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("escuchando")
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

	log.Info().Msg("sandbox detenido")
}

// seedOnce precarga los datos de ejemplo salvo que ya existan (almacén persistente).
func seedOnce(ctx context.Context, store sandbox.Store, authUC *sandbox.AuthUseCase, sweetUC *sandbox.SweetUseCase, log *logger.Logger) error {
	existing, err := store.AccountByUsername(ctx, sandbox.SeedAdminUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info().Msg("datos de ejemplo ya presentes")
		return nil
	}
	if err := sandbox.Seed(ctx, authUC, sweetUC); err != nil {
		return err
	}
	log.Info().
		Str("admin", sandbox.SeedAdminUsername).
		Str("user", sandbox.SeedUserUsername).
		Msg("datos de ejemplo cargados")
	return nil
}
