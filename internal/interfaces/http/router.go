package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sweetshop/internal/application/sandbox"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/pkg/validate"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *sandbox.AuthUseCase
	SweetUC   *sandbox.SweetUseCase
	Validator *validate.Validator
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	v := deps.Validator
	if v == nil {
		v = validate.Get()
	}
	api := app.Group("/api")
	authn := []fiber.Handler{AuthMiddleware(deps.JWTSecret), RequirePrincipal(deps.AuthUC)}
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth (público salvo /me)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, v)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)
	authGroup.Get("/me", append(authn, authHandler.Me)...)

	// Sweets (protegido). Las rutas estáticas van antes que /:id.
	sweets := api.Group("/sweets", authn...)
	sweetHandler := NewSweetHandler(deps.SweetUC, v)
	sweets.Get("/", sweetHandler.List)
	sweets.Get("/search", sweetHandler.Search)
	sweets.Get("/purchase-history", sweetHandler.History)
	sweets.Get("/admin/purchase-history", adminOnly, sweetHandler.AdminHistory)
	sweets.Post("/", adminOnly, sweetHandler.Create)
	sweets.Post("/:id/purchase", sweetHandler.Purchase)
	sweets.Post("/:id/restock", adminOnly, sweetHandler.Restock)
	sweets.Put("/:id", adminOnly, sweetHandler.Update)
	sweets.Delete("/:id", adminOnly, sweetHandler.Delete)
}
