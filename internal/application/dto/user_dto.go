package dto

import (
	"time"

	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// RegisterRequest entrada para registro. El límite de 72 bytes lo impone bcrypt.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,bcryptmax"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

// LoginRequest entrada para login (form-encoded, estilo OAuth2 password).
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse token + usuario, devuelto por login y registro.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// ForgotPasswordRequest entrada para solicitar el restablecimiento.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPasswordResponse ResetToken solo se devuelve en entornos no productivos.
type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}

// ResetPasswordRequest entrada para fijar la nueva contraseña.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,bcryptmax"`
}

// NewUserResponse mapea la identidad al cuerpo HTTP.
func NewUserResponse(u entity.Identity) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// ToEntity convierte el usuario recibido en identidad de dominio.
func (u UserResponse) ToEntity() entity.Identity {
	return entity.Identity{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// ToSession convierte la respuesta de login en sesión.
func (r LoginResponse) ToSession() *entity.Session {
	return &entity.Session{Token: r.AccessToken, User: r.User.ToEntity()}
}
