package sandbox

import "github.com/jhoicas/sweetshop/internal/domain"

// fail error con el detalle que el handler devuelve tal cual al cliente.
func fail(kind error, detail string) error {
	return &domain.APIError{Kind: kind, Detail: detail}
}

// Mensajes que el cliente muestra textualmente.
const (
	msgDuplicateUser   = "Username or email already exists"
	msgBadCredentials  = "Incorrect username or password"
	msgResetRequested  = "If the email exists, a password reset link has been sent"
	msgResetDone       = "Password has been reset successfully"
	msgResetInvalid    = "Invalid or expired reset token"
	msgSweetNotFound   = "Sweet not found"
	msgEditNotOwner    = "You can only edit sweets that you created"
	msgDeleteNotOwner  = "You can only delete sweets that you created"
	msgOutOfStock      = "Sweet is out of stock"
	msgInsufficient    = "Insufficient quantity available"
	msgQuantityAtLeast = "Quantity must be at least 1"
)
