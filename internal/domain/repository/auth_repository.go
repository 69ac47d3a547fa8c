package repository

import (
	"context"

	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// Registration datos de alta de un usuario. Role vacío equivale a "user".
type Registration struct {
	Username string
	Email    string
	Password string
	Role     string
}

// PasswordResetTicket respuesta de forgot-password. Token solo viene informado cuando
// el servidor está configurado para devolverlo en línea (entornos no productivos).
type PasswordResetTicket struct {
	Message string
	Token   string
}

// AuthRepository define el puerto hacia la API de autenticación.
type AuthRepository interface {
	Login(ctx context.Context, username, password string) (*entity.Session, error)
	Register(ctx context.Context, in Registration) (*entity.Session, error)
	ForgotPassword(ctx context.Context, email string) (*PasswordResetTicket, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}
