package repository

import "github.com/jhoicas/sweetshop/internal/domain/entity"

// SessionRepository almacenamiento durable de la sesión del cliente.
// Load devuelve (nil, nil) cuando no hay sesión guardada.
type SessionRepository interface {
	Load() (*entity.Session, error)
	Save(session entity.Session) error
	Clear() error
}
