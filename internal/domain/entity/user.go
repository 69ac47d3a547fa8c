package entity

import "time"

// Roles válidos para Identity.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity usuario autenticado tal como lo conoce el cliente.
// Role es el único discriminador de autorización del lado cliente; la validación real la hace el servidor.
type Identity struct {
	ID        int64
	Username  string
	Email     string
	Role      string // user, admin
	CreatedAt time.Time
}

// IsAdmin predicado puro sobre el rol.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Credentials credencial bearer que se pasa explícitamente a cada llamada saliente.
// El valor cero es una llamada anónima.
type Credentials struct {
	Token string
}

// Empty indica si no hay token.
func (c Credentials) Empty() bool { return c.Token == "" }

// Header valor para la cabecera Authorization.
func (c Credentials) Header() string { return "Bearer " + c.Token }

// Session token + identidad devueltos por login/registro y persistidos entre ejecuciones.
type Session struct {
	Token string
	User  Identity
}

// Credentials credencial de la sesión.
func (s Session) Credentials() Credentials { return Credentials{Token: s.Token} }
