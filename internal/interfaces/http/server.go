package http

import (
	_ "embed"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/sweetshop/internal/application/sandbox"
	"github.com/jhoicas/sweetshop/pkg/logger"
	"github.com/jhoicas/sweetshop/pkg/validate"
)

//go:embed docs/swagger.json
var swaggerSpec []byte

// AppConfig dependencias y opciones de la aplicación Fiber del sandbox.
type AppConfig struct {
	Name      string
	JWTSecret string
	RateLimit int // peticiones/s por cliente; 0 = sin límite
	AuthUC    *sandbox.AuthUseCase
	SweetUC   *sandbox.SweetUseCase
	Logger    *logger.Logger
}

// NewApp construye la aplicación con middlewares, Swagger UI en /docs, /health y las rutas de la API.
func NewApp(cfg AppConfig) *fiber.App {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		ReadTimeout:           time.Second * 10,
		WriteTimeout:          time.Second * 10,
		IdleTimeout:           time.Second * 60,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal server error"
			if fe, ok := err.(*fiber.Error); ok {
				code, msg = fe.Code, fe.Message
			}
			return detail(c, code, msg)
		},
	})
	app.Use(recover.New())
	app.Use(RequestLogger(log.Component("http")))
	if cfg.RateLimit > 0 {
		app.Use(NewRateLimiter(cfg.RateLimit).Handler())
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FilePath:    "swagger.json",
		FileContent: swaggerSpec,
		Path:        "docs",
		Title:       "Sweet Shop Sandbox API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.Name})
	})

	Router(app, RouterDeps{
		AuthUC:    cfg.AuthUC,
		SweetUC:   cfg.SweetUC,
		Validator: validate.Get(),
		JWTSecret: cfg.JWTSecret,
	})
	return app
}
