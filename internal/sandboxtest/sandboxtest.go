// Package sandboxtest levanta la API en memoria detrás de un httptest.Server para tests de integración.
package sandboxtest

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/sweetshop/internal/application/sandbox"
	"github.com/jhoicas/sweetshop/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/sweetshop/internal/interfaces/http"
)

// Secret secreto JWT del sandbox de tests.
const Secret = "sandbox-test-secret"

// Server API en memoria con acceso directo a sus casos de uso.
type Server struct {
	URL    string
	App    *fiber.App
	Auth   *sandbox.AuthUseCase
	Sweets *sandbox.SweetUseCase
	Store  *memory.Store
}

// Options ajustes opcionales.
type Options struct {
	Seed      bool
	RateLimit int
}

// New arranca el sandbox y lo cierra al terminar el test.
func New(t testing.TB, opts Options) *Server {
	t.Helper()
	store := memory.NewStore()
	authUC := sandbox.NewAuthUseCase(store, store, sandbox.AuthOptions{
		JWT:              sandbox.JWTConfig{Secret: Secret, ExpMinutes: 60, Issuer: "sandbox-test"},
		ExposeResetToken: true,
	})
	sweetUC := sandbox.NewSweetUseCase(store, store, store, nil)
	if opts.Seed {
		if err := sandbox.Seed(context.Background(), authUC, sweetUC); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	app := apphttp.NewApp(apphttp.AppConfig{
		Name:      "sweetshop-sandbox-test",
		JWTSecret: Secret,
		RateLimit: opts.RateLimit,
		AuthUC:    authUC,
		SweetUC:   sweetUC,
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return &Server{URL: srv.URL, App: app, Auth: authUC, Sweets: sweetUC, Store: store}
}
