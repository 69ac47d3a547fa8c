package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/domain/repository"
)

// AuthRepository implementa repository.AuthRepository sobre /api/auth.
type AuthRepository struct {
	client *Client
}

// NewAuthRepository construye el repositorio de autenticación.
func NewAuthRepository(client *Client) *AuthRepository {
	return &AuthRepository{client: client}
}

// Login envía las credenciales como formulario (flujo OAuth2 password).
func (r *AuthRepository) Login(ctx context.Context, username, password string) (*entity.Session, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var out dto.LoginResponse
	if err := r.client.do(ctx, entity.Credentials{}, http.MethodPost, "/api/auth/login", nil, formBody(form), &out); err != nil {
		return nil, err
	}
	return out.ToSession(), nil
}

// Register crea la cuenta y devuelve la sesión con su token.
func (r *AuthRepository) Register(ctx context.Context, in repository.Registration) (*entity.Session, error) {
	b, err := jsonBody(dto.RegisterRequest{Username: in.Username, Email: in.Email, Password: in.Password, Role: in.Role})
	if err != nil {
		return nil, err
	}
	var out dto.LoginResponse
	if err := r.client.do(ctx, entity.Credentials{}, http.MethodPost, "/api/auth/register", nil, b, &out); err != nil {
		return nil, err
	}
	return out.ToSession(), nil
}

// ForgotPassword pide un token de reseteo para el email.
func (r *AuthRepository) ForgotPassword(ctx context.Context, email string) (*repository.PasswordResetTicket, error) {
	b, err := jsonBody(dto.ForgotPasswordRequest{Email: email})
	if err != nil {
		return nil, err
	}
	var out dto.ForgotPasswordResponse
	if err := r.client.do(ctx, entity.Credentials{}, http.MethodPost, "/api/auth/forgot-password", nil, b, &out); err != nil {
		return nil, err
	}
	return &repository.PasswordResetTicket{Message: out.Message, Token: out.ResetToken}, nil
}

// ResetPassword fija la nueva contraseña y devuelve el mensaje del servidor.
func (r *AuthRepository) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	b, err := jsonBody(dto.ResetPasswordRequest{Token: token, NewPassword: newPassword})
	if err != nil {
		return "", err
	}
	var out dto.MessageResponse
	if err := r.client.do(ctx, entity.Credentials{}, http.MethodPost, "/api/auth/reset-password", nil, b, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
