package dialog

import (
	"context"

	"github.com/jhoicas/sweetshop/internal/application/auth"
)

// Resetter confirma la nueva contraseña.
type Resetter interface {
	ResetPassword(ctx context.Context, req auth.ResetRequest) (string, error)
}

// PasswordResetForm formulario de nueva contraseña. El token viene del enlace.
type PasswordResetForm struct {
	submitGuard

	Token       string
	NewPassword string
	Confirm     string
}

// NewPasswordResetForm abre el formulario con el token del enlace.
func NewPasswordResetForm(token string) *PasswordResetForm {
	return &PasswordResetForm{Token: token}
}

func (f *PasswordResetForm) request() auth.ResetRequest {
	return auth.ResetRequest{Token: f.Token, NewPassword: f.NewPassword, Confirm: f.Confirm}
}

// Validate coincidencia, longitud y token, en ese orden.
func (f *PasswordResetForm) Validate() error { return f.request().Validate() }

// Submit valida y envía. Devuelve el mensaje de confirmación del servidor.
func (f *PasswordResetForm) Submit(ctx context.Context, r Resetter) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	if err := f.begin(); err != nil {
		return "", err
	}
	defer f.end()
	return r.ResetPassword(ctx, f.request())
}
