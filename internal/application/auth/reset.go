package auth

import (
	"strings"

	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/pkg/validate"
)

// MinPasswordLength longitud mínima de contraseña.
const MinPasswordLength = 8

// Mensajes de validación del restablecimiento.
const (
	MsgPasswordsMismatch = "Passwords do not match"
	MsgPasswordTooShort  = "Password must be at least 8 characters long"
	MsgPasswordTooLong   = "Password cannot be more than 72 bytes"
	MsgResetTokenMissing = "Reset token is missing. Please request a new password reset."
)

// ResetRequest formulario de nueva contraseña. El token llega por el enlace de restablecimiento.
type ResetRequest struct {
	Token       string
	NewPassword string
	Confirm     string
}

// Validate en orden: coincidencia, longitud, token.
func (r ResetRequest) Validate() error {
	if r.NewPassword != r.Confirm {
		return domain.NewValidationError("confirm", MsgPasswordsMismatch)
	}
	if len([]rune(r.NewPassword)) < MinPasswordLength {
		return domain.NewValidationError("new_password", MsgPasswordTooShort)
	}
	if len(r.NewPassword) > validate.MaxPasswordBytes {
		return domain.NewValidationError("new_password", MsgPasswordTooLong)
	}
	if strings.TrimSpace(r.Token) == "" {
		return domain.NewValidationError("token", MsgResetTokenMissing)
	}
	return nil
}
